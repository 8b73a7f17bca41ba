package main

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/drcm_backend/config"
	"github.com/mmdatafocus/drcm_backend/models"
	"github.com/mmdatafocus/drcm_backend/utils"
	"github.com/sirupsen/logrus"
)

//go:embed web/index.html
var indexHTML []byte

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type accessRequest struct {
	Department string `json:"department" binding:"required"`
	Secret     string `json:"secret" binding:"required"`
}

type passDateRequest struct {
	PassDate string `json:"pass_date" binding:"required"`
}

func indexHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	}
}

func departmentsHandler(svc *models.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		departments, err := svc.Departments(c.Request.Context())
		if err != nil {
			respondError(c, "departmentsHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"departments": departments})
	}
}

func accessHandler(svc *models.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req accessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "department and secret are required"})
			return
		}
		ok, err := svc.Authorize(c.Request.Context(), req.Department, req.Secret)
		if err != nil {
			respondError(c, "accessHandler", err)
			return
		}
		if !ok {
			config.GetLogger().WithFields(logrus.Fields{
				"field":      "accessHandler",
				"department": req.Department,
			}).Warn("access denied")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect password"})
			return
		}

		token, _, err := utils.JwtGenerate(req.Department)
		if err != nil {
			respondError(c, "accessHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "department": req.Department})
	}
}

func recordsHandler(svc *models.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		department, session := sessionFromContext(c)
		views, err := svc.PendingView(c.Request.Context(), department, session)
		if err != nil {
			respondError(c, "recordsHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"department": department, "records": views})
	}
}

func previewHandler(svc *models.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := bindPassDate(c)
		if !ok {
			return
		}
		department, session := sessionFromContext(c)
		view, err := svc.Preview(c.Request.Context(), department, session, c.Param("caseNumber"), date)
		if err != nil {
			respondError(c, "previewHandler", err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func savePassDateHandler(svc *models.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := bindPassDate(c)
		if !ok {
			return
		}
		department, session := sessionFromContext(c)
		res, err := svc.Save(c.Request.Context(), department, session, c.Param("caseNumber"), date)
		if err != nil {
			respondError(c, "savePassDateHandler", err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func exportHandler(svc *models.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		department, session := sessionFromContext(c)
		views, err := svc.PendingView(c.Request.Context(), department, session)
		if err != nil {
			respondError(c, "exportHandler", err)
			return
		}
		var buf bytes.Buffer
		if err := models.ExportPendingWorkbook(views, &buf); err != nil {
			respondError(c, "exportHandler", err)
			return
		}
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": "pendientes-" + department + ".xlsx",
		}))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

func bindPassDate(c *gin.Context) (date time.Time, ok bool) {
	var req passDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pass_date is required"})
		return date, false
	}
	d, ok := models.ParseEditDate(req.PassDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%v: %q", models.ErrInvalidDate, req.PassDate)})
		return date, false
	}
	return d, true
}

// sessionFromContext returns the department and token id set by AuthMiddleware.
func sessionFromContext(c *gin.Context) (string, string) {
	department, _ := utils.GetDepartmentFromContext(c.Request.Context())
	tokenId, _ := utils.GetTokenIdFromContext(c.Request.Context())
	return department, tokenId
}

func respondError(c *gin.Context, funcName string, err error) {
	cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	switch {
	case errors.Is(err, models.ErrStoreUnavailable):
		config.LogError(config.GetLogger(), "handlers.go", funcName, "store unavailable", cid, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": models.ErrStoreUnavailable.Error(), "detail": err.Error()})
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
