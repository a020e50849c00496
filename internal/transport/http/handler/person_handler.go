package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"person-registry/internal/core/auth"
	"person-registry/internal/domain"
	"person-registry/internal/feature/person"
	httpez "person-registry/internal/transport/http/ez"
	mdw "person-registry/internal/transport/http/middleware"
	"person-registry/pkg/utils"
)

// PersonHandler 前端（表格 + 表单）调用的接口；每个 token 对应一个工作区
type PersonHandler struct {
	ws    *person.Workspaces
	jwter *auth.JWTer
}

func NewPersonHandler(ws *person.Workspaces, jwter *auth.JWTer) *PersonHandler {
	return &PersonHandler{ws: ws, jwter: jwter}
}

func (h *PersonHandler) Priority() int { return 10 }

func (h *PersonHandler) session(c *gin.Context) (*person.Session, error) {
	wid := c.GetString(mdw.KeyWorkspace)
	if wid == "" {
		return nil, httpez.Unauthorized("unauthorized")
	}
	return h.ws.Get(c.Request.Context(), wid), nil
}

type sessionOut struct {
	Token     string `json:"token"`
	Workspace string `json:"workspace"`
}

// viewIn PUT /view 走 JSON，GET /persons 走 query，字段全部可选
type viewIn struct {
	Page      *int    `json:"page"      form:"page"`
	PageSize  *int    `json:"pageSize"  form:"pageSize"  binding:"omitempty,min=1,max=100"`
	SortField *string `json:"sortField" form:"sortField"`
	SortOrder *string `json:"sortOrder" form:"sortOrder"`
}

// applyView 只改传了的字段
func applyView(ctx context.Context, s *person.Session, in *viewIn) (person.PageView, error) {
	if in.SortField != nil || in.SortOrder != nil {
		field, order := person.SortField(deref(in.SortField)), person.SortOrder(deref(in.SortOrder))
		if !field.Valid() || !order.Valid() {
			return person.PageView{}, httpez.BadRequest("invalid sort")
		}
		s.SetSort(ctx, field, order)
	}
	if in.PageSize != nil {
		s.SetPageSize(ctx, *in.PageSize)
	}
	if in.Page != nil {
		s.SetPage(ctx, *in.Page)
	}
	return s.View(ctx), nil
}

type submitOut struct {
	Person  domain.Person `json:"person"`
	Updated bool          `json:"updated"`
}

type idsIn struct {
	IDs []string `json:"ids" binding:"required"`
}

type countOut struct {
	Deleted int `json:"deleted"`
}

type editOut struct {
	ID   string      `json:"id"`
	Form person.Form `json:"form"`
}

type langIO struct {
	Language person.Language `json:"language" binding:"required"`
}

// MountPublic 无需登录：领取工作区 token
func (h *PersonHandler) MountPublic(api *gin.RouterGroup) {
	e := httpez.New(api)
	httpez.RegisterAction[struct{}, sessionOut](e, httpez.Action[struct{}, sessionOut]{
		Method: http.MethodPost,
		Path:   "/session",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (sessionOut, error) {
			wid := utils.NewID()
			tok, err := h.jwter.Issue(wid, auth.RoleClient)
			if err != nil || tok == "" {
				return sessionOut{}, httpez.Internal("issue token failed", err)
			}
			return sessionOut{Token: tok, Workspace: wid}, nil
		},
	})
}

// MountAPI 挂在已鉴权分组
func (h *PersonHandler) MountAPI(g *gin.RouterGroup) {
	e := httpez.New(g)

	// --- 列表 / 视图 ---
	httpez.RegisterAction[viewIn, person.PageView](e, httpez.Action[viewIn, person.PageView]{
		Method: http.MethodGet,
		Path:   "/persons",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *viewIn) (person.PageView, error) {
			s, err := h.session(c)
			if err != nil {
				return person.PageView{}, err
			}
			return applyView(c.Request.Context(), s, in)
		},
	})

	httpez.RegisterAction[viewIn, person.PageView](e, httpez.Action[viewIn, person.PageView]{
		Method: http.MethodPut,
		Path:   "/view",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *viewIn) (person.PageView, error) {
			s, err := h.session(c)
			if err != nil {
				return person.PageView{}, err
			}
			return applyView(c.Request.Context(), s, in)
		},
	})

	// 全量导出（集合原始顺序，不分页）
	httpez.RegisterAction[struct{}, []domain.Person](e, httpez.Action[struct{}, []domain.Person]{
		Method: http.MethodGet,
		Path:   "/persons/export",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Person, error) {
			s, err := h.session(c)
			if err != nil {
				return nil, err
			}
			return s.List(c.Request.Context()), nil
		},
	})

	httpez.RegisterAction[struct{}, domain.Person](e, httpez.Action[struct{}, domain.Person]{
		Method: http.MethodGet,
		Path:   "/persons/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Person, error) {
			s, err := h.session(c)
			if err != nil {
				return domain.Person{}, err
			}
			p, ok := s.Get(c.Request.Context(), c.Param("id"))
			if !ok {
				return domain.Person{}, httpez.NotFound("person not found")
			}
			return p, nil
		},
	})

	// 丢弃内存状态，按存储重新加载（相当于刷新页面）
	httpez.RegisterAction[struct{}, person.PageView](e, httpez.Action[struct{}, person.PageView]{
		Method: http.MethodPost,
		Path:   "/reload",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (person.PageView, error) {
			s, err := h.session(c)
			if err != nil {
				return person.PageView{}, err
			}
			ctx := c.Request.Context()
			s.Reload(ctx)
			return s.View(ctx), nil
		},
	})

	// --- 提交表单：编辑态更新，否则新增 ---
	httpez.RegisterAction[person.Form, submitOut](e, httpez.Action[person.Form, submitOut]{
		Method: http.MethodPost,
		Path:   "/persons",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *person.Form) (submitOut, error) {
			s, err := h.session(c)
			if err != nil {
				return submitOut{}, err
			}
			p, updated, err := s.Submit(c.Request.Context(), *in)
			if errors.Is(err, person.ErrEditTargetGone) {
				return submitOut{}, httpez.NotFound("person not found")
			}
			if err != nil {
				return submitOut{}, httpez.Invalid(err)
			}
			return submitOut{Person: p, Updated: updated}, nil
		},
	})

	httpez.RegisterAction[person.Form, domain.Person](e, httpez.Action[person.Form, domain.Person]{
		Method: http.MethodPut,
		Path:   "/persons/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *person.Form) (domain.Person, error) {
			s, err := h.session(c)
			if err != nil {
				return domain.Person{}, err
			}
			if err := in.Validate(); err != nil {
				return domain.Person{}, httpez.Invalid(err)
			}
			p, ok := s.Update(c.Request.Context(), c.Param("id"), in.Patch())
			if !ok {
				return domain.Person{}, httpez.NotFound("person not found")
			}
			return p, nil
		},
	})

	httpez.RegisterAction[struct{}, gin.H](e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/persons/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			s, err := h.session(c)
			if err != nil {
				return nil, err
			}
			id := c.Param("id")
			if !s.Delete(c.Request.Context(), id) {
				return nil, httpez.NotFound("person not found")
			}
			return gin.H{"id": id}, nil
		},
	})

	httpez.RegisterAction[idsIn, countOut](e, httpez.Action[idsIn, countOut]{
		Method: http.MethodPost,
		Path:   "/persons/batch-delete",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *idsIn) (countOut, error) {
			s, err := h.session(c)
			if err != nil {
				return countOut{}, err
			}
			return countOut{Deleted: s.DeleteMany(c.Request.Context(), in.IDs)}, nil
		},
	})

	// --- 编辑态 ---
	httpez.RegisterAction[struct{}, editOut](e, httpez.Action[struct{}, editOut]{
		Method: http.MethodPost,
		Path:   "/persons/:id/edit",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (editOut, error) {
			s, err := h.session(c)
			if err != nil {
				return editOut{}, err
			}
			id := c.Param("id")
			f, ok := s.BeginEdit(c.Request.Context(), id)
			if !ok {
				return editOut{}, httpez.NotFound("person not found")
			}
			return editOut{ID: id, Form: f}, nil
		},
	})

	httpez.RegisterAction[struct{}, editOut](e, httpez.Action[struct{}, editOut]{
		Method: http.MethodGet,
		Path:   "/edit",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (editOut, error) {
			s, err := h.session(c)
			if err != nil {
				return editOut{}, err
			}
			p, ok := s.Editing(c.Request.Context())
			if !ok {
				return editOut{}, httpez.NotFound("not editing")
			}
			return editOut{ID: p.ID, Form: person.FormFrom(p)}, nil
		},
	})

	httpez.RegisterAction[struct{}, gin.H](e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/edit",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			s, err := h.session(c)
			if err != nil {
				return nil, err
			}
			s.CancelEdit(c.Request.Context())
			return gin.H{}, nil
		},
	})

	// --- 选择 ---
	httpez.RegisterAction[struct{}, gin.H](e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/selection/all",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			s, err := h.session(c)
			if err != nil {
				return nil, err
			}
			return gin.H{"selected": s.SelectAll(c.Request.Context())}, nil
		},
	})

	httpez.RegisterAction[struct{}, countOut](e, httpez.Action[struct{}, countOut]{
		Method: http.MethodPost,
		Path:   "/selection/delete",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (countOut, error) {
			s, err := h.session(c)
			if err != nil {
				return countOut{}, err
			}
			n := s.DeleteSelected(c.Request.Context())
			if n == 0 {
				return countOut{}, httpez.BadRequest("no selection")
			}
			return countOut{Deleted: n}, nil
		},
	})

	httpez.RegisterAction[struct{}, gin.H](e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/selection/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			s, err := h.session(c)
			if err != nil {
				return nil, err
			}
			id := c.Param("id")
			selected, found := s.ToggleSelect(c.Request.Context(), id)
			if !found {
				return nil, httpez.NotFound("person not found")
			}
			return gin.H{"id": id, "selected": selected}, nil
		},
	})

	httpez.RegisterAction[struct{}, gin.H](e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/selection",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			s, err := h.session(c)
			if err != nil {
				return nil, err
			}
			s.ClearSelection(c.Request.Context())
			return gin.H{}, nil
		},
	})

	// --- 偏好：语言 ---
	httpez.RegisterAction[struct{}, langIO](e, httpez.Action[struct{}, langIO]{
		Method: http.MethodGet,
		Path:   "/preferences/language",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (langIO, error) {
			s, err := h.session(c)
			if err != nil {
				return langIO{}, err
			}
			return langIO{Language: s.Language(c.Request.Context())}, nil
		},
	})

	httpez.RegisterAction[langIO, langIO](e, httpez.Action[langIO, langIO]{
		Method: http.MethodPut,
		Path:   "/preferences/language",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *langIO) (langIO, error) {
			s, err := h.session(c)
			if err != nil {
				return langIO{}, err
			}
			if !s.SetLanguage(c.Request.Context(), in.Language) {
				return langIO{}, httpez.BadRequest("language must be th or en")
			}
			return *in, nil
		},
	})
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
