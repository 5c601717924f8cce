package runs

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resighting-export/internal/export"
	"resighting-export/internal/shared/server/respond"
	"resighting-export/internal/shared/storage/object"
)

// Handler wires HTTP handlers to the runs service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches export routes to the router group. The optional
// middleware guards run creation only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, startGuards ...gin.HandlerFunc) {
	rg.POST("/exports", append(startGuards, h.startExport)...)
	rg.GET("/exports", h.listExports)
	rg.GET("/exports/:id", h.getExport)
	rg.GET("/exports/:id/download", h.downloadExport)
}

// RegisterPage serves the export form at path.
func (h *Handler) RegisterPage(r gin.IRoutes, path string) {
	r.GET(path, func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(exportPage))
	})
}

type startRequest struct {
	Start string `json:"start" form:"start" binding:"required"`
	End   string `json:"end" form:"end" binding:"required"`
}

func (h *Handler) startExport(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "start and end dates are required", nil)
		return
	}

	run, err := h.Svc.Start(c.Request.Context(), req.Start, req.End)
	if run.ID != "" {
		c.Set("runId", run.ID)
	}
	if err != nil {
		if run.ID == "" {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start export", nil)
			return
		}
		kind := export.Classify(err)
		respond.Error(c, statusFor(kind), string(kind), export.UserMessage(err), gin.H{"runId": run.ID})
		return
	}
	c.Set("statusTransition", "running->"+string(run.Status))

	if run.Status == StatusEmpty {
		respond.OK(c, gin.H{
			"run":     runView(run),
			"empty":   true,
			"message": "No resightings were recorded in that date range.",
		})
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"run":         runView(run),
		"downloadUrl": downloadURL(run.ID),
	})
}

func (h *Handler) getExport(c *gin.Context) {
	run, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	respond.OK(c, runView(run))
}

func (h *Handler) listExports(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	runs, err := h.Svc.List(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list exports", nil)
		return
	}
	resp := make([]gin.H, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, runView(run))
	}
	respond.OK(c, resp)
}

func (h *Handler) downloadExport(c *gin.Context) {
	run, rc, err := h.Svc.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", run.FileName))
	c.Header("Content-Type", object.ContentTypeXLSX)
	if run.SizeBytes > 0 {
		c.Header("Content-Length", strconv.FormatInt(run.SizeBytes, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		_ = c.Error(err)
	}
}

func writeLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
	case errors.Is(err, ErrNoDocument):
		respond.Error(c, http.StatusConflict, "no_document", "export has no workbook to download", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch export", nil)
	}
}

func statusFor(kind export.Kind) int {
	switch kind {
	case export.KindInvalidDateFormat, export.KindInvalidDestination:
		return http.StatusBadRequest
	case export.KindStoreUnavailable:
		return http.StatusBadGateway
	case export.KindCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func downloadURL(id string) string {
	return "/api/v1/exports/" + id + "/download"
}

func runView(run Run) gin.H {
	view := gin.H{
		"id":            run.ID,
		"start":         run.StartDate,
		"end":           run.EndDate,
		"status":        run.Status,
		"schemaVersion": run.SchemaVersion,
		"records":       run.Records,
		"unrecognized":  run.Unrecognized,
		"failures":      run.Failures,
		"createdAt":     run.CreatedAt.Format(time.RFC3339),
	}
	if run.FileName != "" {
		view["fileName"] = run.FileName
	}
	if run.CompletedAt != nil {
		view["completedAt"] = run.CompletedAt.Format(time.RFC3339)
	}
	if run.ErrorKind != "" {
		view["error"] = gin.H{"code": run.ErrorKind, "message": run.ErrorMessage}
	}
	if len(run.Report.Failures) > 0 || len(run.Report.Unrecognized) > 0 {
		view["report"] = run.Report
	}
	return view
}

const exportPage = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Resighting export</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
label { display: block; margin: 0.5rem 0; }
#status { margin-top: 1rem; }
</style>
</head>
<body>
<h1>Export resightings</h1>
<form id="export">
<label>Start date <input name="start" placeholder="M/D/YYYY" required></label>
<label>End date <input name="end" placeholder="M/D/YYYY" required></label>
<button type="submit">Export</button>
</form>
<div id="status"></div>
<script>
document.getElementById("export").addEventListener("submit", async (ev) => {
  ev.preventDefault();
  const status = document.getElementById("status");
  status.textContent = "Exporting...";
  const body = new URLSearchParams(new FormData(ev.target));
  const resp = await fetch("/api/v1/exports", { method: "POST", body });
  const data = await resp.json();
  if (!resp.ok) {
    status.textContent = data.error.message;
    return;
  }
  if (data.empty) {
    status.textContent = data.message;
    return;
  }
  window.location = data.downloadUrl;
  status.textContent = "Export complete: " + data.run.records + " records.";
});
</script>
</body>
</html>
`
