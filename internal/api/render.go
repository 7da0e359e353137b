package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cookbooks/dashboard/internal/logging"
	"github.com/pageza/cookbooks/dashboard/internal/session"
	"github.com/pageza/cookbooks/dashboard/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// ratingLabels names each half-star step of the 0-10 rating scale
var ratingLabels = [...]string{
	"Puke",
	"Puke+",
	"Bad",
	"Bad+",
	"Average",
	"Average+",
	"Great",
	"Great+",
	"Awesome",
	"Kevin LOVES!",
}

type navLink struct {
	Name string
	Href string
}

var navLinks = []navLink{
	{Name: "Home", Href: "/dashboard"},
	{Name: "Randomizer", Href: "/dashboard/picker"},
	{Name: "Recipes", Href: "/dashboard/recipes"},
}

// viewData is what every page template receives
type viewData struct {
	Title string
	Path  string
	Nav   []navLink
	User  *types.SessionClaims
	Page  any
}

// Renderer executes the embedded page templates
type Renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

// NewRenderer parses every page template together with the shared layout
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
		tmpl, err := template.New(name).Funcs(templateFuncs()).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Execute renders page into a buffer
func (r *Renderer) Execute(page string, data viewData) ([]byte, error) {
	tmpl, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", page, err)
	}
	return buf.Bytes(), nil
}

// view builds the common template data for a request
func (r *Renderer) view(c *gin.Context, title string, page any) viewData {
	return viewData{
		Title: title,
		Path:  c.Request.URL.Path,
		Nav:   navLinks,
		User:  session.FromContext(c.Request.Context()),
		Page:  page,
	}
}

// HTML renders page for the request and writes it with status
func (r *Renderer) HTML(c *gin.Context, status int, page, title string, data any) {
	body, err := r.Execute(page, r.view(c, title, data))
	if err != nil {
		logging.FromContext(c, r.logger).Error("template rendering failed", zap.String("page", page), zap.Error(err))
		c.String(http.StatusInternalServerError, "Something went wrong.")
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

type errorPage struct {
	Status  int
	Heading string
	Message string
}

// Error renders the generic error page for status
func (r *Renderer) Error(c *gin.Context, status int) {
	page := errorPage{Status: status, Heading: "Something went wrong!", Message: "Please try again later."}
	switch status {
	case http.StatusNotFound:
		page.Heading = "404 Not Found"
		page.Message = "Could not find the requested page."
	case http.StatusTooManyRequests:
		page.Heading = "Slow down"
		page.Message = "Too many requests. Please wait a moment and try again."
	}
	r.HTML(c, status, "error", page.Heading, page)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"stars":       stars,
		"ratingLabel": ratingLabel,
		"halve":       func(rating float64) float64 { return rating / 2 },
		"inc":         func(i int) int { return i + 1 },
		"dec":         func(i int) int { return i - 1 },
		"pageURL":     pageURL,
		"statusURL":   statusURL,
		"pagination":  paginationItems,
		"statuses":    func() []types.Status { return []types.Status{types.StatusUncooked, types.StatusCooked} },
		"formatRating": func(rating float64) string {
			return strconv.FormatFloat(rating, 'f', -1, 64)
		},
	}
}

// stars renders a 0-10 rating as five star slots: "full", "half" or "empty"
func stars(rating float64) []string {
	halves := int(math.Round(math.Max(0, math.Min(rating, 10))))
	out := make([]string, 5)
	for i := range out {
		switch {
		case halves >= 2*(i+1):
			out[i] = "full"
		case halves == 2*i+1:
			out[i] = "half"
		default:
			out[i] = "empty"
		}
	}
	return out
}

// ratingLabel returns the tooltip text for a 0-10 rating
func ratingLabel(rating float64) string {
	step := int(math.Ceil(rating))
	if step <= 0 {
		return "no rating"
	}
	if step > len(ratingLabels) {
		step = len(ratingLabels)
	}
	return ratingLabels[step-1]
}

// pageURL links to page of the listing, keeping the query and status filter
func pageURL(q types.RecipesQuery, page int) string {
	params := url.Values{}
	if q.Query != "" {
		params.Set("query", q.Query)
	}
	if q.Status != "" {
		params.Set("status", string(q.Status))
	}
	params.Set("page", strconv.Itoa(page))
	return "/dashboard/recipes?" + params.Encode()
}

// statusURL switches the listing's status filter, restarting at page 1
func statusURL(q types.RecipesQuery, status string) string {
	q.Status = types.Status(status)
	return pageURL(q, 1)
}
