package voiceagent

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/geko-ai/receptionist/internal/domain/catalog"
	"github.com/geko-ai/receptionist/internal/domain/tenant"
)

// Provisioner keeps a tenant's voice agent in sync with its record and
// service catalog. Sync is idempotent: a tenant without an agent gets one
// created, a tenant with an agent gets its prompt and greeting refreshed.
type Provisioner struct {
	client     *Client
	tenants    *tenant.Service
	offerings  *catalog.Service
	webhookURL string
	logger     zerolog.Logger
}

func NewProvisioner(client *Client, tenants *tenant.Service, offerings *catalog.Service, webhookURL string, logger zerolog.Logger) *Provisioner {
	return &Provisioner{
		client:     client,
		tenants:    tenants,
		offerings:  offerings,
		webhookURL: webhookURL,
		logger:     logger.With().Str("component", "voiceagent").Logger(),
	}
}

func (p *Provisioner) RegisterRoutes(api *echo.Group) {
	api.POST("/tenants/:id/agent/sync", p.SyncAgent)
	api.DELETE("/tenants/:id/agent", p.RemoveAgent)
}

// Sync provisions or refreshes the voice agent for a tenant and writes the
// provider's agent id back onto the tenant record.
func (p *Provisioner) Sync(ctx context.Context, tenantID uuid.UUID) (*Agent, error) {
	t, err := p.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	offerings, err := p.offerings.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	prompt, err := BuildPrompt(t, offerings)
	if err != nil {
		return nil, err
	}
	greeting, err := BuildGreeting(t)
	if err != nil {
		return nil, err
	}

	req := AgentRequest{
		Name:       t.Name,
		Prompt:     prompt,
		Greeting:   greeting,
		WebhookURL: p.webhookURL,
	}
	if t.Phone != nil {
		req.PhoneNumber = *t.Phone
	}

	if t.VoiceAgentID != nil && *t.VoiceAgentID != "" {
		agent, err := p.client.UpdateAgent(ctx, *t.VoiceAgentID, req)
		if err != nil {
			return nil, fmt.Errorf("updating agent %s: %w", *t.VoiceAgentID, err)
		}
		p.logger.Info().Str("tenant_id", tenantID.String()).Str("agent_id", agent.ID).Msg("agent refreshed")
		return agent, nil
	}

	agent, err := p.client.CreateAgent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}

	t.VoiceAgentID = &agent.ID
	if _, err := p.tenants.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("recording agent id: %w", err)
	}

	p.logger.Info().Str("tenant_id", tenantID.String()).Str("agent_id", agent.ID).Msg("agent provisioned")
	return agent, nil
}

// Remove deletes the tenant's agent at the provider and clears the stored id.
func (p *Provisioner) Remove(ctx context.Context, tenantID uuid.UUID) error {
	t, err := p.tenants.Get(ctx, tenantID)
	if err != nil {
		return err
	}
	if t.VoiceAgentID == nil || *t.VoiceAgentID == "" {
		return nil
	}

	if err := p.client.DeleteAgent(ctx, *t.VoiceAgentID); err != nil {
		return fmt.Errorf("deleting agent %s: %w", *t.VoiceAgentID, err)
	}

	t.VoiceAgentID = nil
	if _, err := p.tenants.Update(ctx, t); err != nil {
		return err
	}

	p.logger.Info().Str("tenant_id", tenantID.String()).Msg("agent removed")
	return nil
}

func (p *Provisioner) SyncAgent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}

	agent, err := p.Sync(c.Request().Context(), id)
	if err != nil {
		return p.mapError(err)
	}
	return c.JSON(http.StatusOK, agent)
}

func (p *Provisioner) RemoveAgent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}

	if err := p.Remove(c.Request().Context(), id); err != nil {
		return p.mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (p *Provisioner) mapError(err error) error {
	if errors.Is(err, tenant.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "tenant not found")
	}
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return echo.NewHTTPError(http.StatusBadGateway, "voice agent provider rejected the request")
	}
	return err
}
