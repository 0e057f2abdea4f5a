package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
	acctreports "github.com/odyssey-erp/odyssey-reports/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/layout"
	"github.com/odyssey-erp/odyssey-reports/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-reports/internal/render"
	"github.com/odyssey-erp/odyssey-reports/internal/reports"
)

const dateLayout = "2006-01-02"

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", httpx.ErrValidation, fmt.Sprintf(format, args...))
}

func parseDate(q url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, invalid("%s must be YYYY-MM-DD", key)
	}
	return &t, nil
}

func parseBool(q url.Values, key string) (*bool, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalid("%s must be true or false", key)
	}
	return &v, nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, invalid("ids must be positive integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseCriteria reads entity criteria from the query string.
func parseCriteria(q url.Values) (reports.Criteria, error) {
	var (
		c   reports.Criteria
		err error
	)
	if c.From, err = parseDate(q, "from"); err != nil {
		return c, err
	}
	if c.To, err = parseDate(q, "to"); err != nil {
		return c, err
	}
	if c.IDs, err = parseIDs(q.Get("ids")); err != nil {
		return c, err
	}
	if c.Active, err = parseBool(q, "active"); err != nil {
		return c, err
	}
	if c.Cancelled, err = parseBool(q, "cancelled"); err != nil {
		return c, err
	}
	c.Keyword = strings.TrimSpace(q.Get("q"))
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	}
	return c, nil
}

// parseFinancialCriteria reads statement criteria from the query string.
func parseFinancialCriteria(q url.Values, companyID int64) (acctreports.Criteria, error) {
	c := acctreports.Criteria{CompanyID: companyID}
	var err error
	if c.StartDate, err = parseDate(q, "from"); err != nil {
		return c, err
	}
	if c.EndDate, err = parseDate(q, "to"); err != nil {
		return c, err
	}
	if raw := strings.TrimSpace(q.Get("company_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return c, invalid("company_id must be a non-negative integer")
		}
		c.CompanyID = id
	}
	for _, part := range strings.Split(q.Get("types"), ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		t, err := accounting.ParseAccountType(part)
		if err != nil {
			return c, fmt.Errorf("%w: %w", httpx.ErrValidation, err)
		}
		c.AccountTypes = append(c.AccountTypes, t)
	}
	zero, err := parseBool(q, "include_zero")
	if err != nil {
		return c, err
	}
	c.IncludeZero = zero != nil && *zero
	return c, nil
}

// parseOutput reads the format and page setting. Unset values keep the
// handler defaults.
func parseOutput(q url.Values, defaults reports.PageSetting, fallback render.Format) (render.Format, reports.PageSetting, error) {
	format := fallback
	if raw := strings.TrimSpace(q.Get("format")); raw != "" {
		f, ok := render.ParseFormat(strings.ToLower(raw))
		if !ok {
			return "", defaults, invalid("format must be one of png, xlsx, html, pdf")
		}
		format = f
	}
	setting := defaults
	if raw := strings.TrimSpace(q.Get("size")); raw != "" {
		size, err := layout.ParsePageSize(raw)
		if err != nil {
			return "", defaults, fmt.Errorf("%w: %w", httpx.ErrValidation, err)
		}
		setting.Size = size
	}
	if landscape, err := parseBool(q, "landscape"); err != nil {
		return "", defaults, err
	} else if landscape != nil && *landscape {
		size := setting.Size
		if !size.Valid() {
			size = layout.DefaultPageSize
		}
		setting.Size = size.Landscape()
	}
	if raw := strings.TrimSpace(q.Get("dpi")); raw != "" {
		dpi, err := strconv.Atoi(raw)
		if err != nil || dpi < 36 || dpi > 600 {
			return "", defaults, invalid("dpi must be between 36 and 600")
		}
		setting.DPI = dpi
	}
	if raw := strings.TrimSpace(q.Get("margin")); raw != "" {
		m, err := strconv.ParseFloat(raw, 64)
		if err != nil || m < 0 || m > 144 {
			return "", defaults, invalid("margin must be between 0 and 144 points")
		}
		setting.Margins = &document.Margins{Top: m, Bottom: m, Left: m, Right: m}
	}
	return format, setting, nil
}

func parsePage(q url.Values) (int, error) {
	raw := strings.TrimSpace(q.Get("page"))
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, invalid("page must be a positive integer")
	}
	return page, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("id must be a positive integer")
	}
	return id, nil
}

// printRequest is the body of single and batch print calls.
type printRequest struct {
	ProfileID int64 `json:"profile_id" validate:"required,gt=0"`
	Copies    int   `json:"copies" validate:"omitempty,min=1,max=99"`
}

func (p printRequest) copies() int {
	if p.Copies == 0 {
		return 1
	}
	return p.Copies
}

type batchPrintRequest struct {
	printRequest
	Criteria reports.Criteria `json:"criteria"`
}

type textPrintRequest struct {
	Text     string  `json:"text" validate:"required,max=200000"`
	Device   string  `json:"device" validate:"required,max=100"`
	FontSize float64 `json:"font_size" validate:"omitempty,gte=6,lte=72"`
}

func decodeBody(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return invalid("malformed body: %v", err)
	}
	if err := validate.Struct(target); err != nil {
		return invalid("%v", err)
	}
	return nil
}
