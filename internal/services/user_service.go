package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/store"
	"github.com/rs/zerolog/log"
)

// MinPasswordLength is the shortest password a profile update accepts.
const MinPasswordLength = 6

const (
	defaultPage     = 1
	defaultPageSize = 10
	defaultStatus   = "active"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
	RandomHash() (string, error)
}

// FileRemover deletes uploaded files without blocking the caller.
type FileRemover interface {
	RemoveAsync(ctx context.Context, refs ...string)
}

// ProfilePatch holds the fields a profile update may change. Empty strings
// and a nil Admin leave the stored value untouched.
type ProfilePatch struct {
	Name     string
	Email    string
	Password string
	Admin    *bool
}

// UserPage is one page of a user listing.
type UserPage struct {
	Users    []models.UserView
	Filter   string
	Total    int64
	Page     int
	PageSize int
	Pages    int
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, name, email, password, status string) (models.UserView, error)
	Login(ctx context.Context, email, password string) (models.UserView, error)
	GoogleAuth(ctx context.Context, name, email, avatar string) (models.UserView, error)
	GetProfile(ctx context.Context, userID string) (models.UserView, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	FindUser(ctx context.Context, id string) (models.UserView, error)
	UpdateProfile(ctx context.Context, actingUserID, targetUserID string, patch ProfilePatch) (models.UserView, error)
	UpdateAvatar(ctx context.Context, userID, newRef string) (models.UserView, error)
	ListUsers(ctx context.Context, filter string, page, pageSize int) (UserPage, error)
	DeleteUser(ctx context.Context, targetUserID string) error
	Subscribe(ctx context.Context, actingUserID, targetUserID string) error
	Unsubscribe(ctx context.Context, actingUserID, targetUserID string) error
	UpdateScore(ctx context.Context, userID string, score int) (models.UserView, error)
}

// UserService provides business logic for the user lifecycle. Each
// operation reads the record, derives the new state and writes it back.
type UserService struct {
	store   store.Store
	tokens  TokenIssuer
	hasher  PasswordHasher
	remover FileRemover
	events  EventServiceProvider
	now     func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(st store.Store, tokens TokenIssuer, hasher PasswordHasher, remover FileRemover, events EventServiceProvider) *UserService {
	return &UserService{
		store:   st,
		tokens:  tokens,
		hasher:  hasher,
		remover: remover,
		events:  events,
		now:     time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validationError(err error) error {
	return common.ErrValidation.WithMessage(err.Error())
}

// viewWithToken shapes u for the client with a freshly issued token.
func (s *UserService) viewWithToken(u models.User) (models.UserView, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return models.UserView{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return models.NewUserView(u, token), nil
}

// lowestLevel names the level new accounts start at.
func (s *UserService) lowestLevel(ctx context.Context) string {
	levels, err := s.store.Levels().List(ctx)
	if err != nil || len(levels) == 0 {
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load levels, using default")
		}
		return store.DefaultLevels[0].Name
	}
	return levels[0].Name
}

// Register creates a new account and signs it in.
func (s *UserService) Register(ctx context.Context, name, email, password, status string) (models.UserView, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	err := validation.Errors{
		"name":  validation.Validate(name, validation.Required, validation.Length(1, 100)),
		"email": validation.Validate(email, validation.Required, is.Email),
	}.Filter()
	if err != nil {
		return models.UserView{}, validationError(err)
	}
	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return models.UserView{}, common.ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrNotFound) {
		return models.UserView{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.UserView{}, err
	}
	if status == "" {
		status = defaultStatus
	}

	now := s.now().UTC()
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Status:       status,
		Level:        s.lowestLevel(ctx),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users().Create(ctx, &user); err != nil {
		return models.UserView{}, err
	}

	recordEvent(ctx, s.events, EventUserRegister, fmt.Sprintf("User %s registered", user.Email), user.ID)
	return s.viewWithToken(user)
}

// Login checks credentials and issues a fresh token.
func (s *UserService) Login(ctx context.Context, email, password string) (models.UserView, error) {
	user, err := s.store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.UserView{}, common.ErrNotFound.WithMessage("Email not found")
		}
		return models.UserView{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.UserView{}, err
	}
	return s.viewWithToken(user)
}

// GoogleAuth signs in the account owning email, creating it on first use.
func (s *UserService) GoogleAuth(ctx context.Context, name, email, avatar string) (models.UserView, error) {
	email = normalizeEmail(email)
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return models.UserView{}, validationError(fmt.Errorf("email: %w", err))
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err == nil {
		return s.viewWithToken(user)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return models.UserView{}, err
	}

	hash, err := s.hasher.RandomHash()
	if err != nil {
		return models.UserView{}, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	now := s.now().UTC()
	user = models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Avatar:       avatar,
		Verified:     true,
		FromGoogle:   true,
		Status:       defaultStatus,
		Level:        s.lowestLevel(ctx),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users().Create(ctx, &user); err != nil {
		return models.UserView{}, err
	}

	recordEvent(ctx, s.events, EventUserGoogle, fmt.Sprintf("User %s signed up with Google", user.Email), user.ID)
	return s.viewWithToken(user)
}

// GetUserByID returns the full record, for callers that need role flags.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.store.Users().GetByID(ctx, id)
}

// GetProfile returns the caller's view without a new token.
func (s *UserService) GetProfile(ctx context.Context, userID string) (models.UserView, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return models.UserView{}, err
	}
	return models.NewUserView(user, ""), nil
}

// FindUser returns any user's public view.
func (s *UserService) FindUser(ctx context.Context, id string) (models.UserView, error) {
	return s.GetProfile(ctx, id)
}

// applyPatch derives the updated record. Only admins may change the admin
// flag.
func applyPatch(user models.User, patch ProfilePatch, actorIsAdmin bool, passwordHash string) models.User {
	if patch.Name != "" {
		user.Name = strings.TrimSpace(patch.Name)
	}
	if patch.Email != "" {
		user.Email = normalizeEmail(patch.Email)
	}
	if passwordHash != "" {
		user.PasswordHash = passwordHash
	}
	if actorIsAdmin && patch.Admin != nil {
		user.Admin = *patch.Admin
	}
	return user
}

// UpdateProfile changes the target's profile on behalf of the acting user.
func (s *UserService) UpdateProfile(ctx context.Context, actingUserID, targetUserID string, patch ProfilePatch) (models.UserView, error) {
	actorIsAdmin := false
	if actor, err := s.store.Users().GetByID(ctx, actingUserID); err == nil {
		actorIsAdmin = actor.Admin
	} else if !errors.Is(err, common.ErrNotFound) {
		return models.UserView{}, err
	}
	if !actorIsAdmin && actingUserID != targetUserID {
		return models.UserView{}, common.ErrForbidden
	}

	user, err := s.store.Users().GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.UserView{}, common.ErrNotFound.WithMessage("User not found")
		}
		return models.UserView{}, err
	}

	if patch.Email != "" {
		if err := validation.Validate(normalizeEmail(patch.Email), is.Email); err != nil {
			return models.UserView{}, validationError(fmt.Errorf("email: %w", err))
		}
	}

	var hash string
	if patch.Password != "" {
		if len(patch.Password) < MinPasswordLength {
			return models.UserView{}, common.ErrWeakPassword
		}
		if hash, err = s.hasher.Hash(patch.Password); err != nil {
			return models.UserView{}, err
		}
	}

	updated := applyPatch(user, patch, actorIsAdmin, hash)
	updated.UpdatedAt = s.now().UTC()
	if err := s.store.Users().Update(ctx, updated); err != nil {
		return models.UserView{}, err
	}

	recordEvent(ctx, s.events, EventUserUpdate, fmt.Sprintf("User %s updated", updated.Email), updated.ID)
	return s.viewWithToken(updated)
}

// UpdateAvatar replaces the avatar reference. An empty newRef clears it.
// The previous file is removed in the background once the record is saved.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, newRef string) (models.UserView, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.UserView{}, common.ErrNotFound.WithMessage("User not found")
		}
		return models.UserView{}, err
	}

	oldRef := user.Avatar
	user.Avatar = newRef
	user.UpdatedAt = s.now().UTC()
	if err := s.store.Users().Update(ctx, user); err != nil {
		return models.UserView{}, err
	}

	if oldRef != "" && oldRef != newRef {
		s.remover.RemoveAsync(ctx, oldRef)
	}
	return s.viewWithToken(user)
}

// pageCount returns ceil(total / pageSize).
func pageCount(total int64, pageSize int) int {
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// ListUsers returns one page of users whose email contains filter, most
// recently updated first. A page past the end is empty, not an error.
func (s *UserService) ListUsers(ctx context.Context, filter string, page, pageSize int) (UserPage, error) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	f := models.UserFilter{EmailContains: filter}
	total, err := s.store.Users().Count(ctx, f)
	if err != nil {
		return UserPage{}, err
	}

	result := UserPage{
		Users:    []models.UserView{},
		Filter:   filter,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pageCount(total, pageSize),
	}
	if page > result.Pages {
		return result, nil
	}

	f.Offset = (page - 1) * pageSize
	f.Limit = pageSize
	users, err := s.store.Users().List(ctx, f)
	if err != nil {
		return UserPage{}, err
	}
	for _, u := range users {
		result.Users = append(result.Users, models.NewUserView(u, ""))
	}
	return result, nil
}

// DeleteUser removes the account together with its posts, their comments and
// its uploaded files. The steps are independent writes; a failure stops the
// cascade where it is and is returned as-is.
func (s *UserService) DeleteUser(ctx context.Context, targetUserID string) error {
	user, err := s.store.Users().GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound.WithMessage("User not found")
		}
		return err
	}

	posts, err := s.store.Posts().ListByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	postIDs := make([]string, 0, len(posts))
	files := make([]string, 0, len(posts)+1)
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		files = append(files, p.Photo)
	}
	files = append(files, user.Avatar)

	comments, err := s.store.Comments().DeleteByPostIDs(ctx, postIDs)
	if err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Cascade delete failed at comments")
		return err
	}
	if _, err := s.store.Posts().DeleteByIDs(ctx, postIDs); err != nil {
		log.Error().Err(err).Str("userID", user.ID).Int64("commentsDeleted", comments).Msg("Cascade delete failed at posts")
		return err
	}
	s.remover.RemoveAsync(ctx, files...)

	if err := s.leaveSubscriptionGraph(ctx, user); err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Cascade delete failed at subscriptions")
		return err
	}
	if err := s.store.Users().Delete(ctx, user.ID); err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Cascade delete failed at user record")
		return err
	}

	log.Info().Str("userID", user.ID).Int("posts", len(postIDs)).Int64("comments", comments).Msg("User deleted")
	recordEvent(ctx, s.events, EventUserDelete, fmt.Sprintf("User %s deleted", user.Email), user.ID)
	return nil
}

// leaveSubscriptionGraph lowers the counter of every user the account
// follows and drops the account from every follower's set.
func (s *UserService) leaveSubscriptionGraph(ctx context.Context, user models.User) error {
	for _, target := range user.SubscribedUsers {
		if err := s.store.Users().AdjustSubscribers(ctx, target, -1); err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
	}
	_, err := s.store.Users().RemoveSubscriber(ctx, user.ID)
	return err
}

// ensureUsers fails with NotFound unless both users exist.
func (s *UserService) ensureUsers(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if _, err := s.store.Users().GetByID(ctx, id); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrNotFound.WithMessage("User not found")
			}
			return err
		}
	}
	return nil
}

// Subscribe adds target to the acting user's subscriptions. The target's
// counter moves only when the set actually changed, so it always equals the
// number of subscribers.
func (s *UserService) Subscribe(ctx context.Context, actingUserID, targetUserID string) error {
	if err := s.ensureUsers(ctx, actingUserID, targetUserID); err != nil {
		return err
	}
	added, err := s.store.Users().AddSubscription(ctx, actingUserID, targetUserID)
	if err != nil || !added {
		return err
	}
	return s.store.Users().AdjustSubscribers(ctx, targetUserID, 1)
}

// Unsubscribe removes target from the acting user's subscriptions. The
// target may already be gone, in which case only the set changes.
func (s *UserService) Unsubscribe(ctx context.Context, actingUserID, targetUserID string) error {
	if err := s.ensureUsers(ctx, actingUserID); err != nil {
		return err
	}
	removed, err := s.store.Users().RemoveSubscription(ctx, actingUserID, targetUserID)
	if err != nil || !removed {
		return err
	}
	err = s.store.Users().AdjustSubscribers(ctx, targetUserID, -1)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return err
}

// UpdateScore stores score and moves the user to the level it reaches.
func (s *UserService) UpdateScore(ctx context.Context, userID string, score int) (models.UserView, error) {
	if score < 0 {
		return models.UserView{}, common.ErrValidation.WithMessage("score must not be negative")
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return models.UserView{}, err
	}
	levels, err := s.store.Levels().List(ctx)
	if err != nil {
		return models.UserView{}, err
	}

	user.Score = score
	user.Level = models.LevelFor(levels, score, user.Level)
	user.UpdatedAt = s.now().UTC()
	if err := s.store.Users().Update(ctx, user); err != nil {
		return models.UserView{}, err
	}

	recordEvent(ctx, s.events, EventUserScore, fmt.Sprintf("User %s reached %d (%s)", user.Email, score, user.Level), user.ID)
	return models.NewUserView(user, ""), nil
}
