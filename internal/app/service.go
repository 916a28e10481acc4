package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"stockpile/api/internal/archive"
	"stockpile/api/internal/auth"
	"stockpile/api/internal/authpw"
	"stockpile/api/internal/config"
	"stockpile/api/internal/email"
	"stockpile/api/internal/ledger"
	"stockpile/api/internal/rbac"
	"stockpile/api/internal/search"
	"stockpile/api/internal/session"
	"stockpile/api/internal/snapshot"
	"stockpile/api/internal/util"
)

// Session is the explicit identity value passed into every gated operation.
// Permissions are always re-derived from the role, never stored.
type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	Username     string
	FullName     string
	Role         rbac.Role
	Permissions  rbac.Permission
	JTI          string
	ExpiresAt    time.Time
}

type ResourceView struct {
	ledger.Resource
	Level ledger.Level `json:"level"`
}

type RequestView struct {
	ledger.DistributionRequest
	ResourceName string `json:"resourceName"`
	CanFulfill   bool   `json:"canFulfill"`
}

type CreateRequestInput struct {
	ResourceID  string `json:"resourceId"`
	RequestedBy string `json:"requestedBy"`
	Priority    string `json:"priority"`
	Amount      int    `json:"amount"`
	Purpose     string `json:"purpose"`
}

// ActivityEntry is one line of the in-memory history ring. It is the only
// audit trail this system keeps.
type ActivityEntry struct {
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Detail string    `json:"detail"`
}

const activityCap = 100

// Service owns the ledgers and serializes every mutation behind one lock.
// Persistence and search indexing are fire-and-forget: in-memory state is
// authoritative and a crash may leave the last snapshot slightly behind.
type Service struct {
	cfg       config.Config
	snapshots snapshot.Store
	sessions  session.Store
	directory *authpw.Service
	search    *search.Service
	archiver  *archive.Archiver
	mailer    *email.Service
	now       func() time.Time

	mu        sync.Mutex
	resources *ledger.ResourceLedger
	requests  *ledger.RequestLedger
	activity  []ActivityEntry
}

func New(cfg config.Config, snapshots snapshot.Store, sessions session.Store, directory *authpw.Service) *Service {
	return &Service{
		cfg:       cfg,
		snapshots: snapshots,
		sessions:  sessions,
		directory: directory,
		now:       time.Now,
	}
}

// AttachSearch wires the search facade. Separate from New because the
// in-memory fallback needs the service as its record provider.
func (s *Service) AttachSearch(svc *search.Service) { s.search = svc }

func (s *Service) AttachArchiver(a *archive.Archiver) { s.archiver = a }

func (s *Service) AttachMailer(m *email.Service) { s.mailer = m }

// Bootstrap seeds the ledgers from the persisted snapshots, falling back to
// the fixed seed data when a slot is absent or fails to decode.
func (s *Service) Bootstrap(ctx context.Context) error {
	now := s.now()

	resources := ledger.SeedResources(now)
	seeded := true
	if doc, ok, err := s.snapshots.Load(ctx, snapshot.KeyResources); err != nil {
		return fmt.Errorf("load resource snapshot: %w", err)
	} else if ok {
		if revived, decoded := snapshot.DecodeResources(doc); decoded {
			resources = revived
			seeded = false
		} else {
			log.Printf("bootstrap: resource snapshot undecodable, using seed data")
		}
	}

	requests := ledger.SeedRequests(now)
	if doc, ok, err := s.snapshots.Load(ctx, snapshot.KeyRequests); err != nil {
		return fmt.Errorf("load request snapshot: %w", err)
	} else if ok {
		if revived, decoded := snapshot.DecodeRequests(doc); decoded {
			requests = revived
		} else {
			log.Printf("bootstrap: request snapshot undecodable, using seed data")
		}
	}

	s.mu.Lock()
	s.resources = ledger.NewResourceLedger(resources, s.now)
	s.requests = ledger.NewRequestLedger(requests, s.resources, s.now)
	records := s.requestRecordsLocked()
	s.mu.Unlock()

	if seeded {
		s.persist(ctx)
	}
	if s.search != nil {
		s.search.IndexRequests(records)
	}
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.snapshots.Ping(ctx)
}

// Login authenticates against the fixed credential table and issues a
// session. Failures never reveal which of username/password was wrong.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.directory.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, authpw.ErrInvalidCredentials) {
			return Session{}, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		}
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

// Refresh rotates a refresh token for a new session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	userID, err := s.sessions.LookupRefresh(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	user, ok := s.directory.Get(userID)
	if !ok {
		return Session{}, session.ErrNotFound
	}
	if err := s.sessions.RevokeRefresh(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

// Logout clears the persisted session marker. Idempotent: logging out an
// unknown or already-revoked token succeeds.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.RevokeRefresh(ctx, auth.HashToken(refreshToken))
}

func (s *Service) issueSession(ctx context.Context, user authpw.User) (Session, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:  user.ID,
		Name: user.Username,
		Role: string(user.Role),
		JTI:  jti,
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	if err := s.sessions.SaveRefresh(ctx, auth.HashToken(refresh), user.ID, now.Add(s.cfg.RefreshTTL)); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		Username:     user.Username,
		FullName:     user.FullName,
		Role:         user.Role,
		Permissions:  rbac.PermissionsFor(user.Role),
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

// SessionFromToken rebuilds the session value from a bearer token.
func (s *Service) SessionFromToken(_ context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Token:       token,
		UserID:      claims.Sub,
		Username:    claims.Name,
		Role:        rbac.Role(claims.Role),
		Permissions: rbac.PermissionsFor(rbac.Role(claims.Role)),
		JTI:         claims.JTI,
		ExpiresAt:   time.Unix(claims.Exp, 0),
	}
	if user, ok := s.directory.Get(claims.Sub); ok {
		sess.FullName = user.FullName
	}
	return sess, nil
}

// ListResources returns the inventory in storage order with threshold levels.
func (s *Service) ListResources(sess Session) ([]ResourceView, error) {
	if !sess.Permissions.CanViewInventory {
		return nil, forbiddenError()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resourceViewsLocked(), nil
}

// AdjustResource applies a signed stock delta.
func (s *Service) AdjustResource(ctx context.Context, sess Session, id string, delta int) (ResourceView, error) {
	if !sess.Permissions.CanEditResources {
		return ResourceView{}, forbiddenError()
	}

	s.mu.Lock()
	before, _ := s.resources.Get(id)
	resource, err := s.resources.Adjust(id, delta)
	if err != nil {
		s.mu.Unlock()
		return ResourceView{}, toDomainError(err)
	}
	s.recordActivityLocked(sess.Username, "resource.adjust", fmt.Sprintf("%s %+d %s", resource.Name, delta, resource.Unit))
	s.mu.Unlock()

	s.notifyIfCritical(before, resource)
	go s.persist(context.WithoutCancel(ctx))
	return ResourceView{Resource: resource, Level: ledger.StatusOf(resource)}, nil
}

// ListRequests returns the request backlog, most recent first, or in display
// order (priority, then status) when display is set.
func (s *Service) ListRequests(sess Session, display bool) ([]RequestView, error) {
	if !sess.Permissions.CanViewDistribution {
		return nil, forbiddenError()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	requests := s.requests.List()
	if display {
		requests = ledger.SortForDisplay(requests)
	}
	views := make([]RequestView, 0, len(requests))
	for _, req := range requests {
		views = append(views, s.requestViewLocked(req))
	}
	return views, nil
}

// CreateRequest validates and records a new pending distribution request.
func (s *Service) CreateRequest(ctx context.Context, sess Session, input CreateRequestInput) (RequestView, error) {
	if !sess.Permissions.CanCreateRequests {
		return RequestView{}, forbiddenError()
	}

	s.mu.Lock()
	req, err := s.requests.Create(input.ResourceID, input.RequestedBy, ledger.Priority(input.Priority), input.Amount, input.Purpose)
	if err != nil {
		s.mu.Unlock()
		return RequestView{}, toDomainError(err)
	}
	view := s.requestViewLocked(req)
	s.recordActivityLocked(sess.Username, "request.create", fmt.Sprintf("%s requested %d for %s", req.RequestedBy, req.Amount, view.ResourceName))
	record := s.searchRecordLocked(req)
	s.mu.Unlock()

	if s.search != nil {
		s.search.IndexRequest(record)
	}
	go s.persist(context.WithoutCancel(ctx))
	return view, nil
}

// SetRequestStatus drives the request lifecycle. A transition into
// distributed debits the referenced resource exactly once, through the
// fulfillment event.
func (s *Service) SetRequestStatus(ctx context.Context, sess Session, id string, status ledger.Status) (RequestView, error) {
	if !sess.Permissions.CanApproveRequests {
		return RequestView{}, forbiddenError()
	}

	s.mu.Lock()
	var before ledger.Resource
	if req, ok := s.requests.Get(id); ok {
		before, _ = s.resources.Get(req.ResourceID)
	}
	req, fulfillment, err := s.requests.SetStatus(id, status)
	if err != nil {
		s.mu.Unlock()
		return RequestView{}, toDomainError(err)
	}

	var debited ledger.Resource
	if fulfillment != nil {
		debited, err = s.resources.ApplyFulfillment(*fulfillment)
		if err != nil {
			s.mu.Unlock()
			return RequestView{}, toDomainError(err)
		}
	}

	view := s.requestViewLocked(req)
	s.recordActivityLocked(sess.Username, "request."+string(status), fmt.Sprintf("%s for %s", req.RequestedBy, view.ResourceName))
	record := s.searchRecordLocked(req)
	s.mu.Unlock()

	if fulfillment != nil {
		s.notifyIfCritical(before, debited)
	}
	if s.search != nil {
		s.search.IndexRequest(record)
	}
	go s.persist(context.WithoutCancel(ctx))
	return view, nil
}

// Alerts lists resources at or below their warning threshold.
func (s *Service) Alerts(sess Session) ([]ResourceView, error) {
	if !sess.Permissions.CanViewDashboard {
		return nil, forbiddenError()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	alerts := []ResourceView{}
	for _, view := range s.resourceViewsLocked() {
		if view.Level != ledger.LevelNormal {
			alerts = append(alerts, view)
		}
	}
	return alerts, nil
}

// Activity returns the in-memory history ring, newest first.
func (s *Service) Activity(sess Session) ([]ActivityEntry, error) {
	if !sess.Permissions.CanViewDashboard {
		return nil, forbiddenError()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ActivityEntry, len(s.activity))
	copy(out, s.activity)
	return out, nil
}

// Summary aggregates inventory and backlog counts for the reports view.
func (s *Service) Summary(sess Session) (map[string]any, error) {
	if !sess.Permissions.CanViewReports {
		return nil, forbiddenError()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	categories := map[string]map[string]int{}
	levels := map[string]int{}
	for _, r := range s.resources.List() {
		entry, ok := categories[string(r.Category)]
		if !ok {
			entry = map[string]int{}
			categories[string(r.Category)] = entry
		}
		entry["currentAmount"] += r.CurrentAmount
		entry["maxCapacity"] += r.MaxCapacity
		levels[string(ledger.StatusOf(r))]++
	}

	statuses := map[string]int{}
	for _, req := range s.requests.List() {
		statuses[string(req.Status)]++
	}

	return map[string]any{
		"categories":       categories,
		"levels":           levels,
		"requestsByStatus": statuses,
		"generatedAt":      s.now(),
	}, nil
}

// Users returns the seed directory for the user-management view.
func (s *Service) Users(sess Session) ([]authpw.User, error) {
	if !sess.Permissions.CanManageUsers {
		return nil, forbiddenError()
	}
	return s.directory.Users(), nil
}

// SearchRequests runs a full-text search over the request backlog.
func (s *Service) SearchRequests(sess Session, q search.Query) (search.Response, error) {
	if !sess.Permissions.CanViewDistribution {
		return search.Response{}, forbiddenError()
	}
	if s.search == nil {
		return search.Response{Results: []search.Record{}, Query: q.Text}, nil
	}
	return s.search.Search(q), nil
}

// RequestRecords snapshots the backlog as search records. It backs the
// in-memory search fallback.
func (s *Service) RequestRecords() []search.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestRecordsLocked()
}

func (s *Service) resourceViewsLocked() []ResourceView {
	resources := s.resources.List()
	views := make([]ResourceView, 0, len(resources))
	for _, r := range resources {
		views = append(views, ResourceView{Resource: r, Level: ledger.StatusOf(r)})
	}
	return views
}

func (s *Service) requestViewLocked(req ledger.DistributionRequest) RequestView {
	view := RequestView{DistributionRequest: req, ResourceName: "Unknown resource"}
	if resource, ok := s.resources.Get(req.ResourceID); ok {
		view.ResourceName = resource.Name
		view.CanFulfill = s.requests.CanFulfill(req)
	}
	return view
}

func (s *Service) searchRecordLocked(req ledger.DistributionRequest) search.Record {
	view := s.requestViewLocked(req)
	return search.Record{
		ID:           req.ID,
		ResourceID:   req.ResourceID,
		ResourceName: view.ResourceName,
		RequestedBy:  req.RequestedBy,
		Purpose:      req.Purpose,
		Priority:     string(req.Priority),
		Status:       string(req.Status),
	}
}

func (s *Service) requestRecordsLocked() []search.Record {
	requests := s.requests.List()
	records := make([]search.Record, 0, len(requests))
	for _, req := range requests {
		records = append(records, s.searchRecordLocked(req))
	}
	return records
}

func (s *Service) recordActivityLocked(actor, action, detail string) {
	entry := ActivityEntry{At: s.now(), Actor: actor, Action: action, Detail: detail}
	s.activity = append([]ActivityEntry{entry}, s.activity...)
	if len(s.activity) > activityCap {
		s.activity = s.activity[:activityCap]
	}
}

// persist writes both collections to the snapshot store and, when an
// archiver is attached, uploads timestamped backups. Failures are logged,
// never surfaced: memory is authoritative.
func (s *Service) persist(ctx context.Context) {
	s.mu.Lock()
	resourceDoc, resErr := snapshot.EncodeResources(s.resources.List())
	requestDoc, reqErr := snapshot.EncodeRequests(s.requests.List())
	s.mu.Unlock()

	if resErr != nil || reqErr != nil {
		log.Printf("persist: encode failed: %v %v", resErr, reqErr)
		return
	}

	if err := s.snapshots.Save(ctx, snapshot.KeyResources, resourceDoc); err != nil {
		log.Printf("persist: %v", err)
	}
	if err := s.snapshots.Save(ctx, snapshot.KeyRequests, requestDoc); err != nil {
		log.Printf("persist: %v", err)
	}

	if s.archiver != nil {
		s.archiver.StoreAsync(snapshot.KeyResources, resourceDoc)
		s.archiver.StoreAsync(snapshot.KeyRequests, requestDoc)
	}
}

// notifyIfCritical sends a low-stock alert when a mutation moved a resource
// into the critical band.
func (s *Service) notifyIfCritical(before, after ledger.Resource) {
	if s.mailer == nil || !s.mailer.IsConfigured() {
		return
	}
	if ledger.StatusOf(before) == ledger.LevelCritical || ledger.StatusOf(after) != ledger.LevelCritical {
		return
	}
	go func() {
		if err := s.mailer.LowStockAlert(after.Name, after.CurrentAmount, after.Unit, string(ledger.LevelCritical)); err != nil {
			log.Printf("alert: %v", err)
		}
	}()
}
