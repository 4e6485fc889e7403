package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nullpulse/sentinel/internal/apperr"
	"github.com/nullpulse/sentinel/internal/http/handlers"
	"github.com/nullpulse/sentinel/internal/model"
)

// SwitchesHandler implements the management API spec.md §1 explicitly
// leaves interface-only ("only their effect on the data model matters").
// This is one concrete, reasonable shape of that interface.
type SwitchesHandler struct {
	store Store
}

type actionInput struct {
	ActionType string          `json:"action_type" binding:"required,oneof=email webhook script"`
	IsWarning  bool            `json:"is_warning"`
	Config     json.RawMessage `json:"config" binding:"required"`
}

type createSwitchRequest struct {
	Name                   string        `json:"name" binding:"required"`
	Description            *string       `json:"description"`
	TimeoutSeconds         int64         `json:"timeout_seconds" binding:"required,min=1"`
	TriggerCountMax        int64         `json:"trigger_count_max" binding:"min=0"`
	TriggerIntervalSeconds int64         `json:"trigger_interval_seconds" binding:"required,min=1"`
	WarningStages          []int64       `json:"warning_stages"`
	Actions                []actionInput `json:"actions"`
}

type createSwitchResponse struct {
	Success  bool   `json:"success"`
	SwitchID string `json:"switch_id"`
	APIToken string `json:"api_token"`
}

func NewSwitchesHandler(store Store) *SwitchesHandler {
	return &SwitchesHandler{store: store}
}

// Create implements POST /switches. Validation on create per spec.md §6:
// trigger_count_max ≥ 0, trigger_interval_seconds ≥ 1.
func (h *SwitchesHandler) Create(ctx *gin.Context) {
	var req createSwitchRequest
	if !handlers.BindJSON(ctx, &req) {
		return
	}

	domainReq := model.CreateSwitchRequest{
		Name:                   req.Name,
		Description:            req.Description,
		TimeoutSeconds:         req.TimeoutSeconds,
		TriggerCountMax:        req.TriggerCountMax,
		TriggerIntervalSeconds: req.TriggerIntervalSeconds,
	}
	if err := domainReq.Validate(); err != nil {
		respondErr(ctx, apperr.NewValidationError(err.Error(), nil))
		return
	}

	for _, sec := range req.WarningStages {
		stage := model.WarningStage{SecondsBeforeDeadline: sec}
		if err := stage.ValidateAgainstTimeout(req.TimeoutSeconds); err != nil {
			respondErr(ctx, apperr.NewValidationError(err.Error(), nil))
			return
		}
	}
	for _, a := range req.Actions {
		if !model.ActionType(a.ActionType).IsValid() {
			respondErr(ctx, apperr.NewValidationError("invalid action_type", nil))
			return
		}
	}

	sw, err := model.NewSwitch(domainReq, time.Now())
	if err != nil {
		slog.Default().Error("httpapi.switch_token_generation_failed", "err", err)
		respondErr(ctx, apperr.NewTransientStoreError(err))
		return
	}

	reqCtx := ctx.Request.Context()
	if err := h.store.CreateSwitch(reqCtx, sw); err != nil {
		slog.Default().Error("httpapi.create_switch_failed", "err", err)
		respondErr(ctx, apperr.NewTransientStoreError(err))
		return
	}

	for _, sec := range req.WarningStages {
		if err := h.store.CreateWarningStage(reqCtx, model.WarningStage{SwitchID: sw.ID, SecondsBeforeDeadline: sec}); err != nil {
			slog.Default().Error("httpapi.create_warning_stage_failed", "switch_id", sw.ID, "err", err)
			respondErr(ctx, apperr.NewTransientStoreError(err))
			return
		}
	}

	warningOrder, finalOrder := 0, 0
	for _, a := range req.Actions {
		action := model.Action{
			SwitchID:   sw.ID,
			ActionType: model.ActionType(a.ActionType),
			IsWarning:  a.IsWarning,
			Config:     a.Config,
		}
		if a.IsWarning {
			action.ActionOrder = warningOrder
			warningOrder++
		} else {
			action.ActionOrder = finalOrder
			finalOrder++
		}
		if err := h.store.CreateAction(reqCtx, action); err != nil {
			slog.Default().Error("httpapi.create_action_failed", "switch_id", sw.ID, "err", err)
			respondErr(ctx, apperr.NewTransientStoreError(err))
			return
		}
	}

	ctx.JSON(http.StatusCreated, createSwitchResponse{
		Success:  true,
		SwitchID: sw.ID,
		APIToken: sw.APIToken,
	})
}

// List implements GET /switches.
func (h *SwitchesHandler) List(ctx *gin.Context) {
	switches, err := h.store.ListSwitches(ctx.Request.Context())
	if err != nil {
		slog.Default().Error("httpapi.list_switches_failed", "err", err)
		respondErr(ctx, apperr.NewTransientStoreError(err))
		return
	}
	ctx.JSON(http.StatusOK, switches)
}

type switchDetail struct {
	model.Switch
	WarningStages []model.WarningStage `json:"warning_stages"`
	WarningActions []model.Action      `json:"warning_actions"`
	FinalActions   []model.Action      `json:"final_actions"`
}

// Get implements GET /switches/{id}: detail + stages + actions, per
// spec.md §6 ("Detail + stages + actions + history"). Action execution
// history is intentionally left to a future audit endpoint — the store
// contract does not name a list-by-switch query over action_executions,
// and adding one would be inventing beyond spec.md §4.1's operation list.
func (h *SwitchesHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	sw, err := h.store.GetSwitch(reqCtx, id)
	if errors.Is(err, model.ErrNotFound) {
		respondErr(ctx, apperr.NewNotFoundError("switch not found"))
		return
	}
	if err != nil {
		slog.Default().Error("httpapi.get_switch_failed", "switch_id", id, "err", err)
		respondErr(ctx, apperr.NewTransientStoreError(err))
		return
	}

	stages, err := h.store.ListWarningStages(reqCtx, id)
	if err != nil {
		slog.Default().Error("httpapi.list_stages_failed", "switch_id", id, "err", err)
		respondErr(ctx, apperr.NewTransientStoreError(err))
		return
	}
	warnActions, err := h.store.ListActions(reqCtx, id, true)
	if err != nil {
		slog.Default().Error("httpapi.list_warning_actions_failed", "switch_id", id, "err", err)
		respondErr(ctx, apperr.NewTransientStoreError(err))
		return
	}
	finalActions, err := h.store.ListActions(reqCtx, id, false)
	if err != nil {
		slog.Default().Error("httpapi.list_final_actions_failed", "switch_id", id, "err", err)
		respondErr(ctx, apperr.NewTransientStoreError(err))
		return
	}

	ctx.JSON(http.StatusOK, switchDetail{
		Switch:         sw,
		WarningStages:  stages,
		WarningActions: warnActions,
		FinalActions:   finalActions,
	})
}

// Delete implements DELETE /switches/{id}; cascades to stages, actions,
// and executions via the schema's ON DELETE CASCADE.
func (h *SwitchesHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	if _, err := h.store.GetSwitch(reqCtx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondErr(ctx, apperr.NewNotFoundError("switch not found"))
			return
		}
		slog.Default().Error("httpapi.delete_switch_lookup_failed", "switch_id", id, "err", err)
		respondErr(ctx, apperr.NewTransientStoreError(err))
		return
	}

	if err := h.store.DeleteSwitch(reqCtx, id); err != nil {
		slog.Default().Error("httpapi.delete_switch_failed", "switch_id", id, "err", err)
		respondErr(ctx, apperr.NewTransientStoreError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
