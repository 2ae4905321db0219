// gradingservice exposes the question catalog and the grading engine over
// HTTP. It is the only learner-facing surface of the backend.
package gradingservice

import (
	"github.com/gin-gonic/gin"
	"github.com/sql-trainer/backend/httpapi"
	"github.com/sql-trainer/backend/internal/events"
	"github.com/sql-trainer/backend/internal/grader"
	"github.com/sql-trainer/backend/internal/history"
	"github.com/sql-trainer/backend/internal/questions"
)

type GradingService struct {
	catalog *questions.Catalog
	grader  *grader.Grader
	store   *history.Store
	events  *events.EventService
}

func NewGradingService(catalog *questions.Catalog, grader *grader.Grader, store *history.Store, events *events.EventService) *GradingService {
	return &GradingService{
		catalog: catalog,
		grader:  grader,
		store:   store,
		events:  events,
	}
}

func (s *GradingService) Register(router gin.IRouter) {
	api := router.Group("/api/v1")

	api.GET("/databases", s.ListDatabases)
	api.GET("/questions", s.ListQuestions)
	api.POST("/validate", s.Validate)
}

var _ httpapi.Service = (*GradingService)(nil)
