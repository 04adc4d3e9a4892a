package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/miniblog/backend/internal/cache"
	"github.com/miniblog/backend/internal/handlers"
	"github.com/miniblog/backend/internal/middleware"
	"github.com/miniblog/backend/internal/models"
	"github.com/miniblog/backend/internal/repositories"
	"github.com/miniblog/backend/validators"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

const testPageSize = 10

// --- in-memory repository fakes ---

type fakePostRepository struct {
	posts []models.Post
	seq   int64
}

func (r *fakePostRepository) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	r.seq++
	// Monotonic timestamps keep the newest-first ordering deterministic
	post.CreatedAt = time.Unix(1700000000+r.seq, 0)
	post.UpdatedAt = post.CreatedAt
	r.posts = append(r.posts, *post)
	return nil
}

func (r *fakePostRepository) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	for i := range r.posts {
		if r.posts[i].ID.Hex() == id {
			post := r.posts[i]
			return &post, nil
		}
	}
	return nil, repositories.ErrPostNotFound
}

func (r *fakePostRepository) list(match func(models.Post) bool, skip, limit int64) []models.Post {
	var out []models.Post
	for _, p := range r.posts {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if skip >= int64(len(out)) {
		return []models.Post{}
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func (r *fakePostRepository) count(match func(models.Post) bool) int64 {
	var n int64
	for _, p := range r.posts {
		if match(p) {
			n++
		}
	}
	return n
}

func matchAuthors(ids []uint) func(models.Post) bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(p models.Post) bool { return set[p.AuthorID] }
}

func (r *fakePostRepository) GetAllPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	return r.list(func(models.Post) bool { return true }, skip, limit), nil
}

func (r *fakePostRepository) GetPostsByAuthor(_ context.Context, authorID uint, skip, limit int64) ([]models.Post, error) {
	return r.list(func(p models.Post) bool { return p.AuthorID == authorID }, skip, limit), nil
}

func (r *fakePostRepository) GetPostsByAuthors(_ context.Context, authorIDs []uint, skip, limit int64) ([]models.Post, error) {
	return r.list(matchAuthors(authorIDs), skip, limit), nil
}

func (r *fakePostRepository) GetPostsByGroup(_ context.Context, groupID uint, skip, limit int64) ([]models.Post, error) {
	return r.list(func(p models.Post) bool { return p.GroupID == groupID && groupID != 0 }, skip, limit), nil
}

func (r *fakePostRepository) CountAllPosts(context.Context) (int64, error) {
	return r.count(func(models.Post) bool { return true }), nil
}

func (r *fakePostRepository) CountPostsByAuthor(_ context.Context, authorID uint) (int64, error) {
	return r.count(func(p models.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *fakePostRepository) CountPostsByAuthors(_ context.Context, authorIDs []uint) (int64, error) {
	return r.count(matchAuthors(authorIDs)), nil
}

func (r *fakePostRepository) CountPostsByGroup(_ context.Context, groupID uint) (int64, error) {
	return r.count(func(p models.Post) bool { return p.GroupID == groupID && groupID != 0 }), nil
}

func (r *fakePostRepository) UpdatePost(_ context.Context, id string, post *models.Post) error {
	for i := range r.posts {
		if r.posts[i].ID.Hex() == id {
			r.posts[i].Text = post.Text
			r.posts[i].GroupID = post.GroupID
			r.posts[i].ImageURL = post.ImageURL
			r.posts[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return repositories.ErrPostNotFound
}

func (r *fakePostRepository) DeletePost(_ context.Context, id string) error {
	for i := range r.posts {
		if r.posts[i].ID.Hex() == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return repositories.ErrPostNotFound
}

func (r *fakePostRepository) DeletePostsByAuthor(_ context.Context, authorID uint) ([]string, error) {
	var ids []string
	var kept []models.Post
	for _, p := range r.posts {
		if p.AuthorID == authorID {
			ids = append(ids, p.ID.Hex())
		} else {
			kept = append(kept, p)
		}
	}
	r.posts = kept
	return ids, nil
}

func (r *fakePostRepository) DetachGroup(_ context.Context, groupID uint) error {
	for i := range r.posts {
		if r.posts[i].GroupID == groupID {
			r.posts[i].GroupID = 0
		}
	}
	return nil
}

type fakeUserRepository struct {
	users  []models.User
	nextID uint
}

func (r *fakeUserRepository) CreateUser(user *models.User) error {
	r.nextID++
	user.ID = r.nextID
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepository) GetUserByID(id uint) (*models.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepository) GetUserByUsername(username string) (*models.User, error) {
	for i := range r.users {
		if r.users[i].Username == username {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepository) GetUserByEmail(email string) (*models.User, error) {
	for i := range r.users {
		if r.users[i].Email == email {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepository) UpdateUser(user *models.User) error {
	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i] = *user
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeUserRepository) DeleteUser(id uint) error {
	for i := range r.users {
		if r.users[i].ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeGroupRepository struct {
	groups []models.Group
	nextID uint
}

func (r *fakeGroupRepository) CreateGroup(group *models.Group) error {
	r.nextID++
	group.ID = r.nextID
	r.groups = append(r.groups, *group)
	return nil
}

func (r *fakeGroupRepository) GetGroupBySlug(slug string) (*models.Group, error) {
	for i := range r.groups {
		if r.groups[i].Slug == slug {
			group := r.groups[i]
			return &group, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupRepository) GetGroups() ([]models.Group, error) {
	return append([]models.Group{}, r.groups...), nil
}

func (r *fakeGroupRepository) DeleteGroup(id uint) error {
	for i := range r.groups {
		if r.groups[i].ID == id {
			r.groups = append(r.groups[:i], r.groups[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeCommentRepository struct {
	comments []models.Comment
	nextID   uint
}

func (r *fakeCommentRepository) CreateComment(comment *models.Comment) error {
	r.nextID++
	comment.ID = r.nextID
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepository) GetCommentsByPostID(postID string) ([]models.Comment, error) {
	out := []models.Comment{}
	for _, cm := range r.comments {
		if cm.PostID == postID {
			out = append(out, cm)
		}
	}
	return out, nil
}

func (r *fakeCommentRepository) DeleteCommentsByPostIDs(postIDs []string) error {
	set := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		set[id] = true
	}
	var kept []models.Comment
	for _, cm := range r.comments {
		if !set[cm.PostID] {
			kept = append(kept, cm)
		}
	}
	r.comments = kept
	return nil
}

func (r *fakeCommentRepository) DeleteCommentsByAuthor(authorID uint) error {
	var kept []models.Comment
	for _, cm := range r.comments {
		if cm.AuthorID != authorID {
			kept = append(kept, cm)
		}
	}
	r.comments = kept
	return nil
}

type fakeFollowRepository struct {
	follows []models.Follow
	nextID  uint
}

func (r *fakeFollowRepository) CreateFollow(follow *models.Follow) error {
	r.nextID++
	follow.ID = r.nextID
	follow.CreatedAt = time.Now()
	r.follows = append(r.follows, *follow)
	return nil
}

func (r *fakeFollowRepository) DeleteFollow(followerID, followingID uint) error {
	for i := range r.follows {
		if r.follows[i].FollowerID == followerID && r.follows[i].FollowingID == followingID {
			r.follows = append(r.follows[:i], r.follows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrFollowNotFound
}

func (r *fakeFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	for _, f := range r.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFollowRepository) GetFollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	for _, f := range r.follows {
		if f.FollowerID == userID {
			ids = append(ids, f.FollowingID)
		}
	}
	return ids, nil
}

func (r *fakeFollowRepository) DeleteFollowsForUser(userID uint) error {
	var kept []models.Follow
	for _, f := range r.follows {
		if f.FollowerID != userID && f.FollowingID != userID {
			kept = append(kept, f)
		}
	}
	r.follows = kept
	return nil
}

// --- test server wiring ---

type testEnv struct {
	e        *echo.Echo
	users    *fakeUserRepository
	posts    *fakePostRepository
	groups   *fakeGroupRepository
	comments *fakeCommentRepository
	follows  *fakeFollowRepository
	cache    *cache.MemoryCache
}

// newTestEnv wires the echo routes exactly like the router does, against
// in-memory fakes and the in-memory page cache.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "supersecretjwtkey")

	env := &testEnv{
		e:        echo.New(),
		users:    &fakeUserRepository{},
		posts:    &fakePostRepository{},
		groups:   &fakeGroupRepository{},
		comments: &fakeCommentRepository{},
		follows:  &fakeFollowRepository{},
		cache:    cache.NewMemoryCache(20 * time.Second),
	}
	env.e.Validator = validators.NewValidator()

	authGroup := env.e.Group("/api/v1/auth")
	handlers.NewAuthHandler(env.users).RegisterAuthRoutes(authGroup)

	public := env.e.Group("/api/v1")
	postHandler := handlers.NewPostHandler(env.posts, env.users, env.groups, env.comments, testPageSize)
	postHandler.RegisterListingRoutes(public)
	public.GET("/posts", postHandler.ListPosts, middleware.PageCacheMiddleware(env.cache))

	groupHandler := handlers.NewGroupHandler(env.groups, env.posts)
	groupHandler.RegisterPublicGroupRoutes(public)

	userHandler := handlers.NewUserHandler(env.users, env.posts, env.comments, env.follows)
	userHandler.RegisterPublicUserRoutes(public)

	api := env.e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	userHandler.RegisterProfileRoutes(api)
	postHandler.RegisterPostRoutes(api)
	groupHandler.RegisterGroupRoutes(api)
	handlers.NewCommentHandler(env.comments, env.posts).RegisterCommentRoutes(api)
	handlers.NewFollowHandler(env.follows, env.users).RegisterFollowRoutes(api)
	handlers.NewFeedHandler(env.posts, env.follows, testPageSize).RegisterFeedRoutes(api)

	return env
}

// newUser registers a user directly in the fake store and returns it with a
// valid bearer token.
func (env *testEnv) newUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	if err := env.users.CreateUser(user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("supersecretjwtkey"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return user, token
}

// do performs a JSON request against the test server
func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// listedPosts decodes the posts array out of a listing response body
func listedPosts(t *testing.T, rec *httptest.ResponseRecorder) []models.Post {
	t.Helper()

	var body struct {
		Data struct {
			Posts []models.Post `json:"posts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	return body.Data.Posts
}
