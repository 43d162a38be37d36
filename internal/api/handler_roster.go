package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/roster"
)

const maxRosterBytes = 10 << 20

// GetRoster handles GET /api/roster.
func (h *Handler) GetRoster(c *gin.Context) {
	r, err := h.svc.Roster(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// PutRoster handles PUT /api/roster. The body is either CSV text or a
// multipart form whose "file" field holds a .csv or .xlsx file.
func (h *Handler) PutRoster(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRosterBytes)

	var (
		r   roster.Roster
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		r, err = parseUpload(c)
	} else {
		var body []byte
		body, err = io.ReadAll(c.Request.Body)
		if err == nil {
			r, err = roster.ParseCSV(string(body))
		}
	}
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.svc.ImportRoster(c.Request.Context(), r); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func parseUpload(c *gin.Context) (roster.Roster, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return roster.Roster{}, err
	}
	f, err := header.Open()
	if err != nil {
		return roster.Roster{}, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		return roster.ParseXLSX(f)
	}
	body, err := io.ReadAll(f)
	if err != nil {
		return roster.Roster{}, err
	}
	return roster.ParseCSV(string(body))
}
