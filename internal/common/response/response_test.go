// Package response 统一响应格式单元测试
package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ==================== 成功响应测试 ====================

func TestSuccess(t *testing.T) {
	c, w := setupTest()

	Success(c, gin.H{
		"booking_reference": "BK-2026-483920",
		"guest_name":        "Jane Wanjiru",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "success", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "BK-2026-483920", data["booking_reference"])
}

func TestSuccess_NilDataOmitted(t *testing.T) {
	c, w := setupTest()

	Success(c, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 0, resp.Code)
	assert.NotContains(t, w.Body.String(), `"data"`)
}

func TestSuccessWithMessage(t *testing.T) {
	c, w := setupTest()

	SuccessWithMessage(c, "预订已确认", gin.H{"id": 7})

	resp := parseResponse(t, w)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "预订已确认", resp.Message)
}

func TestSuccessPage(t *testing.T) {
	c, w := setupTest()

	list := []gin.H{
		{"booking_reference": "BK-2026-100001", "guest_name": "David Kimani"},
		{"booking_reference": "BK-2026-100002", "guest_name": "Grace Achieng"},
	}
	SuccessPage(c, list, 42, 2, 20)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int      `json:"code"`
		Data PageData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, int64(42), resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Page)
	assert.Equal(t, 20, resp.Data.PageSize)

	items, ok := resp.Data.List.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestSuccessPage_EmptyList(t *testing.T) {
	c, w := setupTest()

	SuccessPage(c, []gin.H{}, 0, 1, 20)

	var resp struct {
		Data PageData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(0), resp.Data.Total)
	assert.NotNil(t, resp.Data.List)
}

// ==================== 错误响应测试 ====================

// 业务错误走 HTTP 200，错误码在 body 里
func TestError_BusinessCodeWithHTTP200(t *testing.T) {
	c, w := setupTest()

	Error(c, 4000, "预订不存在")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 4000, resp.Code)
	assert.Equal(t, "预订不存在", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestBadRequest(t *testing.T) {
	c, w := setupTest()

	BadRequest(c, "无效的预订ID")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 400, resp.Code)
	assert.Equal(t, "无效的预订ID", resp.Message)
}

func TestUnauthorized_DefaultMessage(t *testing.T) {
	c, w := setupTest()

	Unauthorized(c, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 401, resp.Code)
	assert.Equal(t, "请先登录", resp.Message)
}

func TestUnauthorized_CustomMessage(t *testing.T) {
	c, w := setupTest()

	Unauthorized(c, "令牌已过期")

	resp := parseResponse(t, w)
	assert.Equal(t, "令牌已过期", resp.Message)
}

func TestNotFound_DefaultMessage(t *testing.T) {
	c, w := setupTest()

	NotFound(c, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 404, resp.Code)
	assert.Equal(t, "接口不存在", resp.Message)
}

func TestInternalError_DefaultMessage(t *testing.T) {
	c, w := setupTest()

	InternalError(c, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 500, resp.Code)
	assert.Equal(t, "服务器内部错误", resp.Message)
}
