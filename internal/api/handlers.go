package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/nutrition"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

type searchResponse struct {
	Query    string       `json:"query"`
	Foods    []model.Food `json:"foods"`
	Degraded bool         `json:"degraded"`
	Reason   string       `json:"reason,omitempty"`
}

// GET /api/foods/search?q=&limit=
func (s *Server) searchFoods(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apiError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	} else if n, err := service.SearchLimit(c, s.Store.DB); err == nil {
		limit = n
	}
	query := c.Query("q")
	r, _ := s.State.Search(c, query, limit)
	resp := searchResponse{Query: query, Foods: r.Value, Degraded: r.Degraded()}
	if r.Degraded() {
		resp.Reason = r.Kind.String()
	}
	if resp.Foods == nil {
		resp.Foods = []model.Food{}
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/foods
func (s *Server) createFood(c *gin.Context) {
	var in service.CustomFoodInput
	if !bindJSON(c, &in) {
		return
	}
	f, err := service.CreateCustomFood(c, s.Store.DB, in, s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// GET /api/foods/barcode/:code
func (s *Server) lookupBarcode(c *gin.Context) {
	res, err := service.LookupBarcode(c, s.Store.DB, s.Barcode, c.Param("code"), s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/diary/:date
func (s *Server) getDiary(c *gin.Context) {
	date, err := service.NormalizeDate(c.Param("date"), s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.State.Today(c, date))
}

// GET /api/report?from=&to=
func (s *Server) getReport(c *gin.Context) {
	to, err := service.NormalizeDate(c.Query("to"), s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	from := c.Query("from")
	if from == "" {
		from = to
	}
	r, err := service.AnalyticsRange(c, s.Store.DB, from, to, s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type entryRequest struct {
	Date       string         `json:"date"`
	MealType   model.MealType `json:"meal_type"`
	FoodID     *int64         `json:"food_id"`
	Barcode    string         `json:"barcode"`
	Scanned    bool           `json:"scanned"`
	Amount     float64        `json:"amount"`
	Unit       string         `json:"unit"`
	CustomName string         `json:"custom_name"`
	Name       string         `json:"name"`
	Kcal       float64        `json:"kcal"`
	Carbs      float64        `json:"carbs"`
	Protein    float64        `json:"protein"`
	Fat        float64        `json:"fat"`
}

// source picks the logging flow: a referenced food is a search, scan or
// barcode log; anything else is a quick-add.
func (s *Server) source(c *gin.Context, req entryRequest) (service.LogSource, error) {
	if req.FoodID == nil {
		return service.Custom{Name: req.Name, Kcal: req.Kcal, Carbs: req.Carbs, Protein: req.Protein, Fat: req.Fat}, nil
	}
	f, err := service.GetFood(c, s.Store.DB, *req.FoodID)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.TrimSpace(req.Barcode) != "":
		return service.FromBarcode{Barcode: req.Barcode, Food: f, Amount: req.Amount, Unit: req.Unit}, nil
	case req.Scanned:
		return service.FromScan{Food: f, Amount: req.Amount, Unit: req.Unit}, nil
	default:
		return service.FromSearch{Food: f, Amount: req.Amount, Unit: req.Unit, CustomName: req.CustomName}, nil
	}
}

// POST /api/entries
func (s *Server) createEntry(c *gin.Context) {
	var req entryRequest
	if !bindJSON(c, &req) {
		return
	}
	src, err := s.source(c, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	e, err := s.Store.LogEntry(c, src, req.Date, req.MealType)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// PATCH /api/entries/:id
func (s *Server) updateEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		MealType   *model.MealType `json:"meal_type"`
		Amount     *float64        `json:"amount"`
		CustomName *string         `json:"custom_name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	e, err := service.UpdateEntry(c, s.Store.DB, service.UpdateEntryInput{
		ID: id, MealType: req.MealType, Amount: req.Amount, CustomName: req.CustomName,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// DELETE /api/entries/:id
func (s *Server) deleteEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.Store.DeleteEntry(c, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type exerciseRequest struct {
	Date        string                 `json:"date"`
	Time        string                 `json:"time"`
	Category    model.ExerciseCategory `json:"category"`
	Name        string                 `json:"name"`
	DurationMin int                    `json:"duration_min"`
	MET         float64                `json:"met"`
	DistanceKm  *float64               `json:"distance_km"`
	Sets        *int                   `json:"sets"`
	Reps        *int                   `json:"reps"`
	WeightKg    *float64               `json:"weight_kg"`
}

// POST /api/exercises
func (s *Server) createExercise(c *gin.Context) {
	var req exerciseRequest
	if !bindJSON(c, &req) {
		return
	}
	// The burn is frozen with the current body weight.
	if err := s.State.Flush(c); err != nil {
		s.logger().Warn("profile flush before exercise failed", "error", err)
	}
	e, err := service.CreateExercise(c, s.Store.DB, service.ExerciseInput(req), s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// DELETE /api/exercises/:id
func (s *Server) deleteExercise(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := service.DeleteExercise(c, s.Store.DB, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/steps/:date
func (s *Server) setSteps(c *gin.Context) {
	var req struct {
		Steps *int `json:"steps"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Steps == nil {
		apiError(c, http.StatusBadRequest, "steps is required")
		return
	}
	date, err := service.NormalizeDate(c.Param("date"), s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := service.SetSteps(c, s.Store.DB, date, *req.Steps, s.now()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.StepCount{Date: date, Steps: *req.Steps})
}

type profileResponse struct {
	Profile       model.Profile        `json:"profile"`
	MacroGrams    nutrition.MacroGrams `json:"macro_grams"`
	SplitMismatch bool                 `json:"split_mismatch"`
}

func newProfileResponse(p model.Profile) profileResponse {
	split := service.MacroSplit(p)
	return profileResponse{Profile: p, MacroGrams: split.Grams(p.CalorieGoal), SplitMismatch: split.Mismatch()}
}

// GET /api/profile
func (s *Server) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, newProfileResponse(s.State.Profile()))
}

// PUT /api/profile applies a live edit; the write is debounced.
func (s *Server) updateProfile(c *gin.Context) {
	var u service.ProfileUpdate
	if !bindJSON(c, &u) {
		return
	}
	p, err := s.State.UpdateProfile(u)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, newProfileResponse(p))
}

// POST /api/users/sync applies an optional edit and saves immediately. A
// rejected save changes neither the working nor the stored profile.
func (s *Server) syncProfile(c *gin.Context) {
	var u service.ProfileUpdate
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &u) {
			return
		}
	}
	p, err := s.State.ConfirmProfile(c, u)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(p))
}

// POST /api/profile/macros/balance
func (s *Server) balanceMacros(c *gin.Context) {
	s.State.BalanceMacros()
	c.JSON(http.StatusOK, newProfileResponse(s.State.Profile()))
}

// GET /api/my-meals
func (s *Server) listMyMeals(c *gin.Context) {
	meals, err := service.ListMyMeals(c, s.Store.DB)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

// POST /api/my-meals
func (s *Server) createMyMeal(c *gin.Context) {
	var in service.MyMealInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := service.CreateMyMeal(c, s.Store.DB, in, s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// DELETE /api/my-meals/:id
func (s *Server) deleteMyMeal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := service.DeleteMyMeal(c, s.Store.DB, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/my-meals/:id/log
func (s *Server) logMyMeal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Date     string         `json:"date"`
		MealType model.MealType `json:"meal_type"`
		Servings float64        `json:"servings"`
	}
	if !bindJSON(c, &req) {
		return
	}
	e, err := service.LogMyMeal(c, s.Store.DB, id, req.Servings, req.Date, req.MealType, s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}
