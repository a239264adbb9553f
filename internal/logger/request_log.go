package logger

import (
	"bytes"
	"io"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CloudWatch rejects events over 256KB; leave headroom for the envelope.
const bodyLogLimit = 240 * 1024

// GinLogMiddleware logs one structured record per request, including the
// request and response bodies so webhook payloads can be replayed when
// debugging notification matching.
func GinLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestBody, _ := io.ReadAll(c.Request.Body)
		// reattach request body for later use
		c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))

		respWriter := &respLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = respWriter

		requestID := ""
		if lc, ok := lambdacontext.FromContext(c.Request.Context()); ok {
			requestID = lc.AwsRequestID
		}

		c.Next()

		GetLogger().Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("request_body", truncate(string(requestBody))),
			zap.String("response_body", truncate(respWriter.body.String())),
		)
	}
}

func truncate(s string) string {
	if len(s) > bodyLogLimit {
		return s[:bodyLogLimit] + "...TRUNCATED"
	}
	return s
}

type respLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *respLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *respLogWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
