package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"salesleads/internal/auth"
	"salesleads/internal/service"
)

const (
	HeaderSliceCount = "X-Slice-Count"
	HeaderSliceIndex = "X-Slice-Index"
)

func (h *Handler) ListDocuments(c echo.Context) error {
	docs, err := h.svc.ListDocuments(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": docs})
}

func (h *Handler) GetDocument(c echo.Context) error {
	doc, err := h.svc.GetDocument(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

// GetDocumentSlice serves one raw slice. The slice count travels in a header
// so a client can learn it from the first slice it fetches.
func (h *Handler) GetDocumentSlice(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "slice index must be a non-negative integer")
	}
	slice, err := h.svc.GetSlice(c.Request().Context(), c.Param("id"), index)
	if err != nil {
		return mapServiceError(err)
	}

	header := c.Response().Header()
	header.Set(HeaderSliceCount, strconv.Itoa(slice.Count))
	header.Set(HeaderSliceIndex, strconv.Itoa(slice.Index))
	header.Set(echo.HeaderContentLength, strconv.Itoa(len(slice.Data)))
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, slice.Data)
}

func (h *Handler) GetDocumentContent(c echo.Context) error {
	content, err := h.svc.ExportDocument(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, content)
}

func (h *Handler) UploadDocument(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field \"file\" is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	doc, err := h.svc.UploadDocument(c.Request().Context(), service.UploadInput{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		SliceSize:   formInt(c, "sliceSize", 0),
		CreatedBy:   auth.ActorFromContext(c).Subject,
		Body:        src,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, doc)
}
