// Package groups implements group creation and join-by-code membership.
package groups

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/watchtogether/internal/apperr"
	"github.com/mmynk/watchtogether/internal/joincode"
	"github.com/mmynk/watchtogether/internal/metrics"
	"github.com/mmynk/watchtogether/internal/models"
	"github.com/mmynk/watchtogether/internal/storage"
)

// MaxNameLength is the longest accepted group name, in characters.
const MaxNameLength = 64

// createInput is validated before any store access.
type createInput struct {
	UserID string      `validate:"required"`
	Name   string      `validate:"required,max=64"`
	Icon   models.Icon `validate:"required"`
}

// Manager creates groups and adds members to them.
type Manager struct {
	store    storage.GroupStore
	codes    *joincode.Allocator
	validate *validator.Validate
}

// NewManager creates a Manager. codes must check candidates against the same
// store the groups are written to.
func NewManager(store storage.GroupStore, codes *joincode.Allocator) *Manager {
	return &Manager{
		store:    store,
		codes:    codes,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CreateGroup creates a group owned by userID, with userID as its only member,
// and returns it with its freshly issued join code.
//
// The group row and the owner's membership edge are written in one
// transaction, so a failure never leaves an ownerless group behind.
func (m *Manager) CreateGroup(ctx context.Context, userID, name string, icon models.Icon) (group *models.Group, err error) {
	defer func() { recordResult("create", err) }()

	in := createInput{UserID: userID, Name: strings.TrimSpace(name), Icon: icon}
	if err := m.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	group = &models.Group{
		Name:      in.Name,
		Icon:      in.Icon,
		CreatedBy: userID,
	}

	_, err = m.codes.Allocate(ctx, func(code string) error {
		group.JoinCode = code
		return m.store.CreateGroup(ctx, group)
	})
	if err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.Wrap(apperr.KindRemoteWrite, err, "could not create group")
		}
		slog.Error("CreateGroup failed", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "join_code", group.JoinCode, "user_id", userID)
	return group, nil
}

// JoinGroup adds userID to the group identified by rawCode.
//
// The lookup, the membership check and the insert run in one store
// transaction; the member list is re-read inside it, so concurrent joins of
// the same user observe each other and exactly one succeeds.
func (m *Manager) JoinGroup(ctx context.Context, userID, rawCode string) (joined *models.Group, err error) {
	defer func() { recordResult("join", err) }()

	if userID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "sign in to join a group")
	}
	code, err := joincode.Normalize(rawCode)
	if err != nil {
		return nil, err
	}

	err = m.store.RunInTx(ctx, func(tx storage.GroupTx) error {
		group, err := tx.GetGroupByJoinCode(ctx, code)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.KindInvalidCode, "no group uses code %s", code)
		}
		if err != nil {
			return apperr.Wrap(apperr.KindRemoteRead, err, "could not look up group")
		}

		if group.HasMember(userID) {
			return apperr.New(apperr.KindAlreadyMember, "you are already a member of %s", group.Name)
		}

		if err := tx.AddMember(ctx, group.ID, userID); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.New(apperr.KindAlreadyMember, "you are already a member of %s", group.Name)
			}
			return apperr.Wrap(apperr.KindRemoteWrite, err, "could not join group")
		}

		group.Members = append(group.Members, userID)
		joined = group
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.Wrap(apperr.KindRemoteWrite, err, "could not join group")
		}
		slog.Warn("JoinGroup failed", "user_id", userID, "join_code", code, "error", err)
		return nil, err
	}

	slog.Info("Group joined", "group_id", joined.ID, "user_id", userID)
	return joined, nil
}

// GetGroup returns a group the caller belongs to.
func (m *Manager) GetGroup(ctx context.Context, userID, groupID string) (*models.Group, error) {
	group, err := m.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "group not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRemoteRead, err, "could not load group")
	}
	// Non-members get the same answer as for a missing group.
	if !group.HasMember(userID) {
		return nil, apperr.New(apperr.KindNotFound, "group not found")
	}
	return group, nil
}

// ListGroups returns every group the caller belongs to.
func (m *Manager) ListGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	groups, err := m.store.ListGroupsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRemoteRead, err, "could not list groups")
	}
	return groups, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.KindValidation, err, "invalid group")
	}
	fe := verrs[0]
	switch fe.Field() {
	case "UserID":
		return apperr.New(apperr.KindUnauthorized, "sign in to create a group")
	case "Name":
		if fe.Tag() == "max" {
			return apperr.New(apperr.KindValidation, "group name must be at most %d characters", MaxNameLength)
		}
		return apperr.New(apperr.KindValidation, "group name is required")
	default:
		return apperr.New(apperr.KindValidation, "group icon must be a color or an image")
	}
}

func recordResult(operation string, err error) {
	result := "ok"
	if err != nil {
		result = string(apperr.KindOf(err))
		if result == "" {
			result = "error"
		}
	}
	metrics.GroupOperations.WithLabelValues(operation, result).Inc()
}
