package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(query string) Params {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParseDefaults(t *testing.T) {
	p := paramsFor("")
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset())
}

func TestParseComputesOffset(t *testing.T) {
	p := paramsFor("page=3&limit=10")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 20, p.Offset())
}

func TestParseClampsLimit(t *testing.T) {
	p := paramsFor("limit=10000")
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestParseRejectsGarbage(t *testing.T) {
	p := paramsFor("page=-4&limit=zero")
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
}
