package devapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/listing"
)

// Token lifetimes.
const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
	ResetTTL   = time.Hour
)

var (
	errBadCredentials = errors.New("invalid credentials")
	errEmailTaken     = errors.New("email already registered")
	errBadToken       = errors.New("invalid or expired token")
)

type account struct {
	user domain.User
	hash []byte
}

type grant struct {
	userID  string
	expires time.Time
}

// Store is the dev API's in-memory state. All methods are safe for
// concurrent use.
type Store struct {
	mu   sync.RWMutex
	now  func() time.Time
	cost int

	products []domain.Product
	byID     map[string]domain.Product
	posts    []domain.Post

	accounts map[string]*account // by user ID
	emails   map[string]string   // email -> user ID
	refresh  map[string]grant
	resets   map[string]grant
	notes    map[string][]domain.Notification

	// OnReset receives issued reset tokens, usually to email them.
	OnReset func(email, token string)
}

// NewStore loads seed into a fresh store. cost is the bcrypt cost; tests pass
// bcrypt.MinCost.
func NewStore(seed Seed, cost int) (*Store, error) {
	s := &Store{
		now:      time.Now,
		cost:     cost,
		byID:     make(map[string]domain.Product, len(seed.Products)),
		accounts: make(map[string]*account),
		emails:   make(map[string]string),
		refresh:  make(map[string]grant),
		resets:   make(map[string]grant),
		notes:    make(map[string][]domain.Notification),
	}

	for _, p := range seed.Products {
		if p.Currency == "" {
			p.Currency = "SAR"
		}
		s.products = append(s.products, p)
		s.byID[p.ID] = p
	}

	s.posts = append(s.posts, seed.Posts...)
	sort.SliceStable(s.posts, func(i, j int) bool { return s.posts[i].PublishedAt.After(s.posts[j].PublishedAt) })

	for _, u := range seed.Users {
		if _, err := s.addAccount(u.ID, u.Name, u.Email, u.Password, u.Phone); err != nil {
			return nil, err
		}
	}
	for _, n := range seed.Notifications {
		id := s.emails[strings.ToLower(n.User)]
		s.notes[id] = append(s.notes[id], domain.Notification{
			ID:        uuid.NewString(),
			Title:     n.Title,
			Body:      n.Body,
			Link:      n.Link,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	for id := range s.notes {
		sortNotifications(s.notes[id])
	}
	return s, nil
}

func (s *Store) addAccount(id, name, email, password, phone string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := s.emails[email]; ok {
		return domain.User{}, errEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	u := domain.User{ID: id, Name: name, Email: email, Phone: phone, CreatedAt: s.now().UTC()}
	s.accounts[id] = &account{user: u, hash: hash}
	s.emails[email] = id
	return u, nil
}

// Products returns one page of a category, sorted by one of the listing sort
// orders.
func (s *Store) Products(category, order string, page, limit int) domain.ProductPage {
	s.mu.RLock()
	var items []domain.Product
	for _, p := range s.products {
		if category == "" || p.Category == category {
			items = append(items, p)
		}
	}
	s.mu.RUnlock()

	items = listing.Filter{Sort: order}.Apply(items)
	pg := listing.Paginate(items, page, limit)
	return domain.ProductPage{
		Items:      pg.Items,
		Page:       pg.Page,
		PageSize:   pg.PageSize,
		TotalItems: pg.TotalItems,
		TotalPages: pg.TotalPages,
	}
}

// Product looks a product up by ID.
func (s *Store) Product(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

// Search matches query against names, brands and tags.
func (s *Store) Search(query string, limit int) []domain.Product {
	s.mu.RLock()
	items := make([]domain.Product, len(s.products))
	copy(items, s.products)
	s.mu.RUnlock()

	found := listing.Filter{Query: query, Sort: listing.SortRating}.Apply(items)
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found
}

// Posts returns one page of the blog, newest first.
func (s *Store) Posts(page, limit int) domain.PostPage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pg := listing.Paginate(s.posts, page, limit)
	return domain.PostPage{Items: pg.Items, Page: pg.Page, TotalPages: pg.TotalPages}
}

// Post looks a post up by slug.
func (s *Store) Post(slug string) (domain.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return domain.Post{}, false
}

// Authenticate checks an email and password.
func (s *Store) Authenticate(email, password string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return domain.User{}, errBadCredentials
	}
	acc := s.accounts[id]
	if bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return domain.User{}, errBadCredentials
	}
	return acc.user, nil
}

// Register creates an account.
func (s *Store) Register(name, email, password string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccount("", name, email, password, "")
}

// User returns the account with the given ID.
func (s *Store) User(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return domain.User{}, false
	}
	return acc.user, true
}

// UpdateProfile saves the editable profile fields.
func (s *Store) UpdateProfile(id string, upd domain.ProfileUpdate) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return domain.User{}, false
	}
	acc.user.Name = upd.Name
	acc.user.Phone = upd.Phone
	acc.user.AvatarURL = upd.AvatarURL
	return acc.user, true
}

// ChangePassword replaces the password after checking the current one.
func (s *Store) ChangePassword(id, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return errBadCredentials
	}
	if bcrypt.CompareHashAndPassword(acc.hash, []byte(current)) != nil {
		return errBadCredentials
	}
	return s.setPassword(acc, next)
}

func (s *Store) setPassword(acc *account, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	acc.hash = hash
	return nil
}

// IssueRefresh creates an opaque refresh token for userID.
func (s *Store) IssueRefresh(userID string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.refresh[token] = grant{userID: userID, expires: s.now().Add(RefreshTTL)}
	s.mu.Unlock()
	return token
}

// Rotate spends a refresh token and returns the user it belonged to
// together with its replacement.
func (s *Store) Rotate(token string) (domain.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.refresh[token]
	delete(s.refresh, token)
	if !ok || s.now().After(g.expires) {
		return domain.User{}, "", errBadToken
	}
	acc, ok := s.accounts[g.userID]
	if !ok {
		return domain.User{}, "", errBadToken
	}
	next := uuid.NewString()
	s.refresh[next] = grant{userID: g.userID, expires: s.now().Add(RefreshTTL)}
	return acc.user, next, nil
}

// Revoke drops a refresh token.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.refresh, token)
	s.mu.Unlock()
}

// RequestReset issues a reset token when the email belongs to an account.
// Unknown emails are silently ignored.
func (s *Store) RequestReset(email string) {
	s.mu.Lock()
	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	var token string
	if ok {
		token = uuid.NewString()
		s.resets[token] = grant{userID: id, expires: s.now().Add(ResetTTL)}
	}
	hook := s.OnReset
	s.mu.Unlock()

	if ok && hook != nil {
		hook(email, token)
	}
}

// Reset spends a reset token and sets a new password. Every refresh token of
// the account is revoked.
func (s *Store) Reset(token, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.resets[token]
	delete(s.resets, token)
	if !ok || s.now().After(g.expires) {
		return errBadToken
	}
	acc, ok := s.accounts[g.userID]
	if !ok {
		return errBadToken
	}
	if err := s.setPassword(acc, password); err != nil {
		return err
	}
	for t, rg := range s.refresh {
		if rg.userID == g.userID {
			delete(s.refresh, t)
		}
	}
	return nil
}

// Notifications lists a user's notifications, newest first.
func (s *Store) Notifications(userID string) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Notification, len(s.notes[userID]))
	copy(out, s.notes[userID])
	return out
}

// Notify adds a notification for userID.
func (s *Store) Notify(userID string, n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	s.notes[userID] = append(s.notes[userID], n)
	sortNotifications(s.notes[userID])
}

// MarkRead marks one notification read. It reports false for unknown IDs.
func (s *Store) MarkRead(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes[userID] {
		if s.notes[userID][i].ID == id {
			s.notes[userID][i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead marks every notification of userID read.
func (s *Store) MarkAllRead(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes[userID] {
		s.notes[userID][i].Read = true
	}
}

func sortNotifications(ns []domain.Notification) {
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].CreatedAt.After(ns[j].CreatedAt) })
}
