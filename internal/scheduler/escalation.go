// Package scheduler watches for requests stuck too long in a stage and warns
// the people who can unstick them. Scans are stateless: every run recomputes
// breaches from current data and re-sends, so delivery is at-least-once.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"backend/internal/config"
	"backend/internal/model"
	"backend/internal/notify"
	"backend/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EscalationScheduler runs two independent periodic scans:
//
//   - intake: unassigned requests older than the consideration window are
//     reported to the building's managers and to operators;
//   - execution: assigned, unfinished requests older than the execution
//     window are reported to the assigned worker.
type EscalationScheduler struct {
	store   repository.RequestStore
	users   repository.UserRepository
	gateway notify.Gateway
	cfg     config.EscalationConfig

	intakeBusy    atomic.Bool
	executionBusy atomic.Bool
}

func NewEscalationScheduler(store repository.RequestStore, users repository.UserRepository, gateway notify.Gateway, cfg config.EscalationConfig) *EscalationScheduler {
	return &EscalationScheduler{
		store:   store,
		users:   users,
		gateway: gateway,
		cfg:     cfg,
	}
}

// Start launches both scan loops. They stop when ctx is cancelled.
func (s *EscalationScheduler) Start(ctx context.Context) {
	go s.loop(ctx, s.cfg.IntakeScanInterval, "intake", s.RunIntakeScan)
	go s.loop(ctx, s.cfg.ExecutionScanInterval, "execution", s.RunExecutionScan)
}

func (s *EscalationScheduler) loop(ctx context.Context, interval time.Duration, name string, scan func(context.Context) (int, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := scan(ctx)
			if err != nil {
				log.WithError(err).Errorf("%s escalation scan failed", name)
				continue
			}
			if count > 0 {
				log.Infof("%s escalation scan reported %d overdue request(s)", name, count)
			}
		}
	}
}

// RunIntakeScan reports every unassigned request older than the
// consideration window to the managers of its building and to operators.
// Returns the number of overdue requests found. A failed notification never
// aborts the scan.
func (s *EscalationScheduler) RunIntakeScan(ctx context.Context) (int, error) {
	if !s.intakeBusy.CompareAndSwap(false, true) {
		// Previous scan still running; skip rather than queue.
		return 0, nil
	}
	defer s.intakeBusy.Store(false)

	unassigned := true
	cutoff := time.Now().Add(-s.cfg.ConsiderationWindow)
	overdue, err := s.store.Find(ctx, repository.RequestFilter{
		Unassigned:    &unassigned,
		CreatedBefore: &cutoff,
	})
	if err != nil {
		return 0, fmt.Errorf("intake scan query: %w", err)
	}

	for i := range overdue {
		req := &overdue[i]
		recipients := s.intakeRecipients(ctx, req)
		if len(recipients) == 0 {
			log.Warnf("no manager or operator to warn about request %s", req.ID)
			continue
		}

		subject := "Overdue request"
		body := fmt.Sprintf("You're taking too long to process the request (> %s): %s id = %s",
			s.cfg.ConsiderationWindow, req.Title, req.ID)
		for _, email := range recipients {
			if err := s.gateway.Notify(ctx, email, subject, body); err != nil {
				log.WithError(err).Warnf("failed to notify %s about request %s", email, req.ID)
			}
		}
	}

	return len(overdue), nil
}

// RunExecutionScan reports every assigned, unfinished request older than the
// execution window to its assignee. Returns the number of overdue requests
// found.
func (s *EscalationScheduler) RunExecutionScan(ctx context.Context) (int, error) {
	if !s.executionBusy.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer s.executionBusy.Store(false)

	assigned := false
	cutoff := time.Now().Add(-s.cfg.ExecutionWindow)
	overdue, err := s.store.Find(ctx, repository.RequestFilter{
		Unassigned:    &assigned,
		ExcludeStatus: model.StatusFinished,
		CreatedBefore: &cutoff,
	})
	if err != nil {
		return 0, fmt.Errorf("execution scan query: %w", err)
	}

	for i := range overdue {
		req := &overdue[i]
		email, err := s.assigneeEmail(ctx, req)
		if err != nil {
			log.WithError(err).Warnf("cannot resolve assignee of request %s", req.ID)
			continue
		}

		subject := "Overdue request"
		body := fmt.Sprintf("You take too long to complete the request (> %s): %s id = %s",
			s.cfg.ExecutionWindow, req.Title, req.ID)
		if err := s.gateway.Notify(ctx, email, subject, body); err != nil {
			log.WithError(err).Warnf("failed to notify %s about request %s", email, req.ID)
		}
	}

	return len(overdue), nil
}

func (s *EscalationScheduler) intakeRecipients(ctx context.Context, req *model.ServiceRequest) []string {
	var emails []string

	managers, err := s.users.ListByRole(ctx, model.RoleManager, &req.BuildingID)
	if err != nil {
		log.WithError(err).Warnf("failed to list managers of building %s", req.BuildingID)
	}
	for _, m := range managers {
		emails = append(emails, m.Email)
	}

	operators, err := s.users.ListByRole(ctx, model.RoleOperator, nil)
	if err != nil {
		log.WithError(err).Warn("failed to list operators")
	}
	for _, o := range operators {
		emails = append(emails, o.Email)
	}

	return emails
}

func (s *EscalationScheduler) assigneeEmail(ctx context.Context, req *model.ServiceRequest) (string, error) {
	workerID, err := uuid.Parse(req.AssigneeID)
	if err != nil {
		return "", fmt.Errorf("bad assignee id %q: %w", req.AssigneeID, err)
	}
	worker, err := s.users.GetByID(ctx, workerID)
	if err != nil {
		return "", err
	}
	return worker.Email, nil
}
