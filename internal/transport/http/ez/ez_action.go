package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"person-registry/internal/feature/person"
	mdw "person-registry/internal/transport/http/middleware"
	resp "person-registry/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code    int
	Msg     string
	Err     error
	Details any
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Invalid 字段级校验失败
func Invalid(err error) error {
	var ve *person.ValidationError
	if errors.As(err, &ve) {
		return &AErr{Code: resp.CodeValidation, Msg: "validation failed", Err: err, Details: ve.Fields}
	}
	return &AErr{Code: resp.CodeBadRequest, Msg: err.Error(), Err: err}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/persons/:id"
	Binder  Binder   // 绑定方式
	Roles   []string // 限定角色（可选，分组已鉴权时可留空）
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 角色
		if len(a.Roles) > 0 {
			role := c.GetString(mdw.KeyRole)
			ok := false
			for _, r := range a.Roles {
				if role == r {
					ok = true
					break
				}
			}
			if !ok {
				c.JSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			if mdw.IsBodyTooLarge(bindErr) {
				c.JSON(http.StatusOK, resp.Error(resp.CodePayloadTooLarge, ""))
				return
			}
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)

		// 4) 统一错误映射
		if err != nil {
			var ae *AErr
			if errors.As(err, &ae) {
				if ae.Code >= resp.CodeServerError {
					_ = c.Error(err)
				}
				c.JSON(http.StatusOK, resp.ErrorWithData(ae.Code, ae.Error(), ae.Details))
				return
			}
			_ = c.Error(err)
			c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
