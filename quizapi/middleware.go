package quizapi

import (
	"bytes"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS allows all origins, methods and headers; the quiz frontend is served
// from a different origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

const logBodyLimit = 4096

// RequestLogger logs method, path and a bounded copy of the request body.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && c.Request.Method != http.MethodGet {
			body, err := io.ReadAll(io.LimitReader(c.Request.Body, logBodyLimit))
			if err == nil {
				c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
				log.Printf("[quizapi] incoming %s %s body=%s", c.Request.Method, c.Request.URL.Path, body)
			} else {
				log.Printf("[quizapi] could not read request body: %v", err)
			}
		}
		c.Next()
	}
}
