package http

import (
	"context"
	"fmt"
	"net/http"

	"sanma/common/log"

	"github.com/gin-gonic/gin"
)

type HandlerFunc func(*Context) error
type MiddlewareFunc func(*Context) error

// HttpServer 基于 gin 的 HTTP 服务器封装
type HttpServer struct {
	engine *gin.Engine
	server *http.Server
	port   int
}

type ServerOption func(*HttpServer)

func WithPort(port int) ServerOption {
	return func(s *HttpServer) {
		s.port = port
	}
}

func WithMode(mode string) ServerOption {
	return func(s *HttpServer) {
		gin.SetMode(mode)
	}
}

func NewHttpServer(opts ...ServerOption) *HttpServer {
	gin.SetMode(gin.ReleaseMode)
	server := &HttpServer{
		engine: gin.New(),
		port:   8080,
	}
	for _, opt := range opts {
		opt(server)
	}
	return server
}

func wrap(h HandlerFunc) gin.HandlerFunc {
	return func(gc *gin.Context) {
		if err := h(newContext(gc)); err != nil {
			log.Error("handler 错误: %v", err)
		}
	}
}

func wrapMiddleware(m MiddlewareFunc) gin.HandlerFunc {
	return func(gc *gin.Context) {
		if err := m(newContext(gc)); err != nil {
			log.Error("middleware 错误: %v", err)
			gc.Abort()
		}
	}
}

// Use 全局中间件
func (s *HttpServer) Use(middlewares ...MiddlewareFunc) {
	for _, m := range middlewares {
		s.engine.Use(wrapMiddleware(m))
	}
}

// Group 路由组
type RouterGroup struct {
	group *gin.RouterGroup
}

func (s *HttpServer) Group(path string, middlewares ...MiddlewareFunc) *RouterGroup {
	g := s.engine.Group(path)
	for _, m := range middlewares {
		g.Use(wrapMiddleware(m))
	}
	return &RouterGroup{group: g}
}

func (g *RouterGroup) GET(path string, h HandlerFunc)  { g.group.GET(path, wrap(h)) }
func (g *RouterGroup) POST(path string, h HandlerFunc) { g.group.POST(path, wrap(h)) }

// GET 根级路由
func (s *HttpServer) GET(path string, h HandlerFunc)  { s.engine.GET(path, wrap(h)) }
func (s *HttpServer) POST(path string, h HandlerFunc) { s.engine.POST(path, wrap(h)) }

// RawHandler 挂载原生 http.HandlerFunc（websocket 升级、statsviz 等）
func (s *HttpServer) RawHandler(method, path string, h http.HandlerFunc) {
	s.engine.Handle(method, path, gin.WrapF(h))
}

// RawMux 挂载一段原生 mux 到路径前缀
func (s *HttpServer) RawMux(prefix string, mux http.Handler) {
	s.engine.Any(prefix+"/*any", gin.WrapH(mux))
}

// Run 阻塞启动
func (s *HttpServer) Run() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.engine,
	}
	log.Info("http 监听端口 %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *HttpServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
