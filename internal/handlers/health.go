package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health reports process liveness and database connectivity.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"

		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(requestContext(c))
			}
			if err != nil {
				status = http.StatusServiceUnavailable
				dbStatus = "unreachable"
			}
		}

		c.JSON(status, gin.H{
			"success":    status == http.StatusOK,
			"database":   dbStatus,
			"checked_at": time.Now().UTC(),
		})
	}
}
