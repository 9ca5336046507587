package handlers

import (
	"net/http"
	"strconv"

	"hamsterhub/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTasks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	status := domain.TaskStatus(c.Query("status"))

	tasks, err := h.board.ListTasks(c.Request.Context(), status, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type postTaskRequest struct {
	TaskName    string `json:"task_name" binding:"required"`
	Description string `json:"description"`
	Reward      int64  `json:"reward" binding:"required"`
}

func (h *Handler) PostTask(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	var req postTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_name and reward required"})
		return
	}

	task, err := h.board.PostTask(c.Request.Context(), id, req.TaskName, req.Description, req.Reward)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c *gin.Context) {
	task, acceptances, err := h.board.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task, "acceptances": acceptances})
}

func (h *Handler) AcceptTask(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	if err := h.board.AcceptTask(c.Request.Context(), c.Param("id"), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (h *Handler) CompleteTask(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	if err := h.board.CompleteTask(c.Request.Context(), c.Param("id"), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

func (h *Handler) CancelTask(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	if err := h.board.CancelTask(c.Request.Context(), c.Param("id"), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

type selectWinnersRequest struct {
	Winners []domain.TaskWinner `json:"winners" binding:"required"`
}

func (h *Handler) SelectWinners(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	var req selectWinnersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "winners required"})
		return
	}

	task, err := h.board.SelectWinners(c.Request.Context(), c.Param("id"), id, req.Winners)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
