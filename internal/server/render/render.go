package render

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const notFoundHTML = `<!doctype html>
<html>
<head><title>Not Found</title></head>
<body>
<h1>404</h1>
<p>This board does not exist.</p>
</body>
</html>`

// NotFoundPage serves the tenant not-found page on the originally requested
// URL, so the address bar keeps the path the caller asked for.
func NotFoundPage(c *gin.Context) {
	if acceptsJSON(c) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{"code": "not_found", "message": "organization not found"},
		})
		return
	}
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(notFoundHTML))
}

func acceptsJSON(c *gin.Context) bool {
	return c.GetHeader("Accept") == "application/json"
}
