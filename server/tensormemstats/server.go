// Package tensormemstats exposes a tensormem.MemoryManager's pool
// occupancy over HTTP, grounded on server/unified/unified_server.go's
// gin.Default()-plus-JSON-handlers shape. It is purely an introspection
// surface: nothing here participates in planning or execution.
package tensormemstats

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cogpy/tensormem/core/tensormem"
)

// Server wraps a gin engine reporting on a fixed set of registered
// managers, keyed by a caller-chosen name (typically the execution
// target's string form).
type Server struct {
	engine   *gin.Engine
	managers map[string]*tensormem.MemoryManager
}

// New builds a Server with no managers registered.
func New() *Server {
	s := &Server{managers: make(map[string]*tensormem.MemoryManager)}
	s.engine = gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	s.engine.Use(cors.New(corsConfig))

	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/stats", s.handleStats)
	s.engine.GET("/stats/:name", s.handleStatsByName)
	return s
}

// Register associates a MemoryManager with a name for later reporting.
func (s *Server) Register(name string, m *tensormem.MemoryManager) {
	s.managers[name] = m
}

// Run starts the HTTP server on addr, blocking until it exits.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// managerStats is the JSON shape a single manager's pool occupancy is
// reported as.
type managerStats struct {
	Name        string `json:"name"`
	MappingKind string `json:"mapping_kind"`
	NumPools    int    `json:"num_pools"`
}

func (s *Server) handleStats(c *gin.Context) {
	out := make([]managerStats, 0, len(s.managers))
	for name, m := range s.managers {
		out = append(out, managerStats{
			Name:        name,
			MappingKind: m.LifetimeManager().MappingKind().String(),
			NumPools:    m.PoolManager().NumPools(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"managers": out})
}

func (s *Server) handleStatsByName(c *gin.Context) {
	name := c.Param("name")
	m, ok := s.managers[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no manager registered under that name"})
		return
	}
	c.JSON(http.StatusOK, managerStats{
		Name:        name,
		MappingKind: m.LifetimeManager().MappingKind().String(),
		NumPools:    m.PoolManager().NumPools(),
	})
}
