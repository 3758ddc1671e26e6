package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/url"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/platform/mailer"
	"github.com/taskraft/taskraft-api/internal/store"
)

// InvitationPreview is the landing-page view of an invitation. It carries no
// identifiers beyond what the invitee already holds in the link.
type InvitationPreview struct {
	GroupName string `json:"group_name"`
	Email     string `json:"email"`
	Accepted  bool   `json:"accepted"`
}

// InvitationService issues and redeems group invitations. Redemption is
// idempotent under concurrency: when two requests race on the same token for
// the same user, both succeed and exactly one membership exists afterwards.
type InvitationService struct {
	db          *sql.DB
	invitations store.InvitationStore
	memberships store.MembershipStore
	groups      store.GroupStore
	authz       *Authorizer
	mail        mailer.Mailer
	siteName    string
	baseURL     string
	logger      *slog.Logger
}

// NewInvitationService creates an InvitationService.
// It returns an error if any of the required dependencies are nil.
func NewInvitationService(
	db *sql.DB,
	invitations store.InvitationStore,
	memberships store.MembershipStore,
	groups store.GroupStore,
	authz *Authorizer,
	mail mailer.Mailer,
	siteName string,
	baseURL string,
	log *slog.Logger,
) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if invitations == nil {
		return nil, errors.New("invitation store cannot be nil")
	}
	if memberships == nil {
		return nil, errors.New("membership store cannot be nil")
	}
	if groups == nil {
		return nil, errors.New("group store cannot be nil")
	}
	if authz == nil {
		return nil, errors.New("authorizer cannot be nil")
	}
	if mail == nil {
		return nil, errors.New("mailer cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &InvitationService{
		db:          db,
		invitations: invitations,
		memberships: memberships,
		groups:      groups,
		authz:       authz,
		mail:        mail,
		siteName:    siteName,
		baseURL:     baseURL,
		logger:      log.With(slog.String("component", "invitation_service")),
	}, nil
}

// Issue creates a pending invitation for the email address and sends the
// invite link. Only the group owner may invite. Email delivery is
// best-effort: a failed send is logged but does not undo the invitation,
// since the token can still be shared out of band.
func (s *InvitationService) Issue(
	ctx context.Context,
	actorID, groupID uuid.UUID,
	email string,
) (*domain.Invitation, error) {
	if _, err := s.authz.RequireOwner(ctx, actorID, groupID); err != nil {
		return nil, err
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("issue_invitation", "failed to load group", err)
	}

	invitation, err := domain.NewInvitation(groupID, email)
	if err != nil {
		return nil, err
	}

	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, NewServiceError("issue_invitation", "failed to save invitation", err)
	}

	s.sendInviteEmail(ctx, invitation, group.Name)

	s.logger.InfoContext(ctx, "invitation issued",
		slog.String("invitation_id", invitation.ID.String()),
		slog.String("group_id", groupID.String()),
		slog.String("actor_id", actorID.String()))
	return invitation, nil
}

// Preview returns the landing-page view of an invitation.
// Returns ErrInvalidInviteToken for unknown tokens or deleted groups.
func (s *InvitationService) Preview(ctx context.Context, token string) (*InvitationPreview, error) {
	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidInviteToken
		}
		return nil, NewServiceError("preview_invitation", "failed to load invitation", err)
	}

	group, err := s.groups.GetByID(ctx, invitation.GroupID)
	if err != nil {
		if store.IsNotFoundError(err) {
			// The group is gone; the token can never be redeemed.
			return nil, ErrInvalidInviteToken
		}
		return nil, NewServiceError("preview_invitation", "failed to load group", err)
	}

	return &InvitationPreview{
		GroupName: group.Name,
		Email:     invitation.Email,
		Accepted:  invitation.Accepted,
	}, nil
}

// Redeem turns a pending invitation into a membership for the actor.
//
// The token must be pending and issued for the actor's email address;
// otherwise Redeem returns ErrInvalidInviteToken. A token that was already
// redeemed in an earlier request is invalid. When two requests race on the
// same pending token, the conditional accept settles it: only the request
// that flips the invitation writes a membership. The loser still succeeds —
// it returns the membership the actor already holds, or nil when the token
// was consumed on behalf of a different account.
func (s *InvitationService) Redeem(
	ctx context.Context,
	actor *domain.Identity,
	token string,
) (*domain.Membership, error) {
	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidInviteToken
		}
		return nil, NewServiceError("redeem_invitation", "failed to load invitation", err)
	}

	// A token observed as already accepted is spent. Only requests that
	// catch the invitation pending may proceed; if two of them race, the
	// conditional update below settles it.
	if !invitation.IsPending() {
		return nil, ErrInvalidInviteToken
	}
	if !invitation.MatchesEmail(actor.Email) {
		return nil, ErrInvalidInviteToken
	}

	membership, err := domain.NewMembership(actor.UserID, invitation.GroupID, domain.RoleMember)
	if err != nil {
		return nil, NewServiceError("redeem_invitation", "failed to build membership", err)
	}

	var result *domain.Membership
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		flipped, err := s.invitations.WithTx(tx).Accept(ctx, token)
		if err != nil {
			return NewServiceError("redeem_invitation", "failed to accept invitation", err)
		}
		if !flipped {
			// A concurrent redemption flipped the invitation after the
			// pending pre-check. The token is spent; write no membership.
			existing, lookupErr := s.memberships.WithTx(tx).
				GetByUserAndGroup(ctx, actor.UserID, invitation.GroupID)
			switch {
			case lookupErr == nil:
				result = existing
			case store.IsNotFoundError(lookupErr):
				// The winner was a different account with the same address.
				result = nil
			default:
				return NewServiceError("redeem_invitation", "failed to load existing membership", lookupErr)
			}
			return nil
		}

		err = s.memberships.WithTx(tx).Create(ctx, membership)
		switch {
		case err == nil:
			result = membership
			return nil
		case errors.Is(err, store.ErrMembershipExists):
			existing, lookupErr := s.memberships.WithTx(tx).
				GetByUserAndGroup(ctx, actor.UserID, invitation.GroupID)
			if lookupErr != nil {
				return NewServiceError("redeem_invitation", "failed to load existing membership", lookupErr)
			}
			result = existing
			return nil
		case errors.Is(err, store.ErrInvalidEntity):
			// The group was deleted between lookup and insert.
			return ErrInvalidInviteToken
		default:
			return NewServiceError("redeem_invitation", "failed to save membership", err)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "invitation redeemed",
		slog.String("invitation_id", invitation.ID.String()),
		slog.String("group_id", invitation.GroupID.String()),
		slog.String("user_id", actor.UserID.String()))
	return result, nil
}

func (s *InvitationService) sendInviteEmail(
	ctx context.Context,
	invitation *domain.Invitation,
	groupName string,
) {
	link := s.baseURL + "/invite?token=" + url.QueryEscape(invitation.Token)
	email := mailer.BuildInvitationEmail(mailer.InvitationEmailData{
		SiteName:   s.siteName,
		GroupName:  groupName,
		InviteLink: link,
	})
	email.To = invitation.Email

	if err := s.mail.Send(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "invitation email delivery failed",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
	}
}
