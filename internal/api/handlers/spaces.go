package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pongenv/internal/pong"
)

// GetSpaces describes the observation and action spaces and the physics
// parameters sessions run with
func GetSpaces(params pong.Params) gin.HandlerFunc {
	bounds := pong.BoundsFor(params)
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"observation": gin.H{
				"shape": []int{len(bounds.Low)},
				"low":   bounds.Low,
				"high":  bounds.High,
				"order": []string{"player_y", "opponent_y", "ball_x", "ball_y", "ball_vx", "ball_vy"},
			},
			"action": gin.H{
				"n":      pong.NumActions,
				"labels": []string{pong.ActionHold.String(), pong.ActionUp.String(), pong.ActionDown.String()},
			},
			"params": params,
		})
	}
}
