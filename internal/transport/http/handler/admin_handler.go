package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"person-registry/internal/domain"
	"person-registry/internal/feature/person"
	httpez "person-registry/internal/transport/http/ez"
)

// AdminHandler 管理端：查看 / 清空某个工作区的持久化数据
type AdminHandler struct {
	ws *person.Workspaces
}

func NewAdminHandler(ws *person.Workspaces) *AdminHandler { return &AdminHandler{ws: ws} }

func (h *AdminHandler) Priority() int { return 10 }

type workspaceOut struct {
	ID        string          `json:"id"`
	Has       bool            `json:"has"`
	Language  person.Language `json:"language"`
	Persons   []domain.Person `json:"persons"`
	Malformed bool            `json:"malformed"`
	RawBytes  int             `json:"rawBytes"`
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := httpez.New(admin)

	// --- GET /admin/v1/workspaces/:id ---
	httpez.RegisterAction[struct{}, workspaceOut](e, httpez.Action[struct{}, workspaceOut]{
		Method: http.MethodGet,
		Path:   "/workspaces/:id",
		Binder: httpez.BindNone,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, _ *struct{}) (workspaceOut, error) {
			id := c.Param("id")
			ctx := c.Request.Context()
			b := h.ws.Bridge(id)
			raw, ok := b.Raw(ctx)
			if !ok {
				return workspaceOut{}, httpez.NotFound("workspace not found")
			}
			// 与 Load 同一套解析；Load 把坏数据当空集合，这里单独标出来
			persons, perr := person.ParsePersons(raw)
			if perr != nil {
				persons = []domain.Person{}
			}
			return workspaceOut{
				ID:        id,
				Has:       b.Has(ctx),
				Language:  b.LoadLanguage(ctx),
				Persons:   persons,
				Malformed: perr != nil,
				RawBytes:  len(raw),
			}, nil
		},
	})

	// --- DELETE /admin/v1/workspaces/:id  清空存储并丢弃内存会话 ---
	httpez.RegisterAction[struct{}, gin.H](e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/workspaces/:id",
		Binder: httpez.BindNone,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if id == "" {
				return nil, httpez.BadRequest("missing id")
			}
			h.ws.Bridge(id).Clear(c.Request.Context())
			h.ws.Evict(id)
			return gin.H{"id": id}, nil
		},
	})
}
