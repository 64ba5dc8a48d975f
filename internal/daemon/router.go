package daemon

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router wires the gin engine with the daemon's routes.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(s.log.Named("http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok\n")
	})

	v1 := r.Group("/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/events", s.handleEvents)
	v1.GET("/stream", s.handleStream)

	v1.GET("/mill", s.handleListMill)
	v1.POST("/mill", s.handleAddMill)

	v1.GET("/rentals", s.handleListRentals)
	v1.PUT("/rentals/:id", s.handleSaveRental)
	v1.POST("/rentals/:id/toggle", s.handleToggleRental)
	v1.DELETE("/rentals/:id", s.handleDeleteRental)

	v1.GET("/fund", s.handleGetFund)
	v1.POST("/fund", s.handleAddFund)

	v1.GET("/summaries", s.handleListSummaries)
	v1.PUT("/summaries", s.handleSaveSummary)

	v1.GET("/totals", s.handleTotals)

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func apiError(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(c *gin.Context) {
	c.JSON(http.StatusOK, s.recentEvents())
}

func (s *Service) handleStream(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: s.now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	c.SSEvent(current.Type, current)
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev := <-ch:
			c.SSEvent(ev.Type, ev)
			return true
		}
	})
}

// millInput is the body accepted by POST /v1/mill.
type millInput struct {
	Date               string      `json:"date"`
	Income             model.Money `json:"income"`
	ExpenseDescription string      `json:"expenseDescription"`
	ExpenseAmount      model.Money `json:"expenseAmount"`
	Electricity        model.Money `json:"electricity"`
	Savings            model.Money `json:"savings"`
	Notes              string      `json:"notes"`
}

func (s *Service) handleListMill(c *gin.Context) {
	records := s.store.MillRecords(c.Request.Context())
	records = pipeline.FilterMillByDate(records, c.Query("date"))
	c.JSON(http.StatusOK, pipeline.SortMillNewestFirst(records))
}

func (s *Service) handleAddMill(c *gin.Context) {
	var in millInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	if in.Date == "" {
		in.Date = model.Day(s.now())
	}
	d, err := model.ParseDay(in.Date)
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}

	rec := model.MillRecord{
		ID:                 model.NewID(),
		Date:               model.Day(d),
		Income:             in.Income,
		ExpenseDescription: strings.TrimSpace(in.ExpenseDescription),
		ExpenseAmount:      in.ExpenseAmount,
		Electricity:        in.Electricity,
		Savings:            in.Savings,
		Notes:              strings.TrimSpace(in.Notes),
	}
	if err := s.store.AppendMill(c.Request.Context(), rec); err != nil {
		apiError(c, http.StatusInternalServerError, err)
		return
	}
	s.pollOnce(c.Request.Context())
	c.JSON(http.StatusCreated, rec)
}

func (s *Service) handleListRentals(c *gin.Context) {
	records := s.store.RentalRecords(c.Request.Context())
	records = pipeline.FilterRentals(records, c.Query("search"), c.DefaultQuery("status", pipeline.StatusFilterAll))
	c.JSON(http.StatusOK, pipeline.SortRentalsByRoom(records))
}

func (s *Service) handleSaveRental(c *gin.Context) {
	var rec model.RentalRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	rec.ID = c.Param("id")
	if rec.PaymentStatus == "" {
		rec.PaymentStatus = model.StatusPending
	}
	status, err := model.ParseStatus(string(rec.PaymentStatus))
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	rec.PaymentStatus = status
	if strings.TrimSpace(rec.RoomNumber) == "" {
		apiError(c, http.StatusBadRequest, errors.New("roomNumber is required"))
		return
	}

	if err := s.store.SaveRental(c.Request.Context(), rec); err != nil {
		apiError(c, http.StatusInternalServerError, err)
		return
	}
	s.pollOnce(c.Request.Context())
	c.JSON(http.StatusOK, rec)
}

func (s *Service) handleToggleRental(c *gin.Context) {
	ctx := c.Request.Context()
	rec, ok := s.store.RentalByID(ctx, c.Param("id"))
	if !ok {
		apiError(c, http.StatusNotFound, errors.New("rental not found"))
		return
	}
	rec = pipeline.ToggleStatus(rec, model.Day(s.now()))
	if err := s.store.SaveRental(ctx, rec); err != nil {
		apiError(c, http.StatusInternalServerError, err)
		return
	}
	s.pollOnce(ctx)
	c.JSON(http.StatusOK, rec)
}

func (s *Service) handleDeleteRental(c *gin.Context) {
	if err := s.store.DeleteRental(c.Request.Context(), c.Param("id")); err != nil {
		apiError(c, http.StatusInternalServerError, err)
		return
	}
	s.pollOnce(c.Request.Context())
	c.Status(http.StatusNoContent)
}

type fundBody struct {
	Amount model.Money `json:"amount"`
}

func (s *Service) handleGetFund(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"repairFund": s.store.RepairFund(c.Request.Context())})
}

func (s *Service) handleAddFund(c *gin.Context) {
	var body fundBody
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	if body.Amount == 0 {
		apiError(c, http.StatusBadRequest, errors.New("amount must be non-zero"))
		return
	}
	ctx := c.Request.Context()
	if err := s.store.AddToRepairFund(ctx, body.Amount); err != nil {
		apiError(c, http.StatusInternalServerError, err)
		return
	}
	s.pollOnce(ctx)
	c.JSON(http.StatusOK, gin.H{"repairFund": s.store.RepairFund(ctx)})
}

func (s *Service) handleListSummaries(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.MonthlySummaries(c.Request.Context()))
}

// handleSaveSummary snapshots the month named by ?month=&year= (default:
// the current month) from the stored mill records.
func (s *Service) handleSaveSummary(c *gin.Context) {
	month, year, err := s.monthQuery(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	ctx := c.Request.Context()
	sum := pipeline.SummaryFor(s.store.MillRecords(ctx), month, year)
	if err := s.store.SaveMonthlySummary(ctx, sum); err != nil {
		apiError(c, http.StatusInternalServerError, err)
		return
	}
	s.pollOnce(ctx)
	c.JSON(http.StatusOK, sum)
}

// totalsResponse is served at /v1/totals.
type totalsResponse struct {
	Monthly  model.MonthlyTotals  `json:"monthly"`
	Rentals  model.RentalTotals   `json:"rentals"`
	Days     []model.DayTotals    `json:"days"`
	Expenses []model.ExpenseGroup `json:"expenses"`
}

func (s *Service) handleTotals(c *gin.Context) {
	month, year, err := s.monthQuery(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	ctx := c.Request.Context()
	mill := s.store.MillRecords(ctx)
	c.JSON(http.StatusOK, totalsResponse{
		Monthly:  pipeline.MonthlyTotals(mill, month, year),
		Rentals:  pipeline.RentalTotals(s.store.RentalRecords(ctx)),
		Days:     pipeline.AggregateDays(mill, month, year),
		Expenses: pipeline.AggregateExpenses(mill, month, year),
	})
}

func (s *Service) monthQuery(c *gin.Context) (time.Month, int, error) {
	now := s.now()
	month, year := now.Month(), now.Year()
	if v := c.Query("month"); v != "" {
		m, err := model.ParseMonth(v)
		if err != nil {
			return 0, 0, err
		}
		month = m
	}
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			return 0, 0, errors.New("year must be a positive integer")
		}
		year = y
	}
	return month, year, nil
}
