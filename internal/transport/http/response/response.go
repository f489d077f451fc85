package response

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// verbose = 非生产环境：错误体带调用栈，生产只留 status/message
var verbose bool

func SetVerbose(v bool) { verbose = v }

// Fail 统一错误体 {status, message}，并中断后续 handler
func Fail(c *gin.Context, status int, message string) {
	body := gin.H{"status": status, "message": message}
	if verbose {
		body["stack"] = string(debug.Stack())
	}
	c.AbortWithStatusJSON(status, body)
}

// FailErr 同 Fail，非生产环境附带底层错误文本
func FailErr(c *gin.Context, status int, message string, err error) {
	body := gin.H{"status": status, "message": message}
	if verbose {
		if err != nil {
			body["error"] = err.Error()
		}
		body["stack"] = string(debug.Stack())
	}
	c.AbortWithStatusJSON(status, body)
}
