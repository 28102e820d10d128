// internal/content/store.go
//
// Read-side content repository.
//
// Context
// -------
// The theme reads posts, archive listings, per-post layout overrides, and
// widget assignment from the blog database.  The schema is the familiar
// one:
//
//	wp_posts               (ID, post_name, post_title, post_content, ...)
//	wp_postmeta            (post_id, meta_key, meta_value)
//	wp_terms / wp_term_taxonomy / wp_term_relationships
//	wp_users               (ID, user_login, display_name)
//	primer_sidebar_widgets (sidebar_id, widget_id, position)
//	primer_widgets         (widget_id, widget_type, settings JSON)
//
// Search builds a default clause and hands it to the posts_search filter
// together with the SearchQuery, so toggles and modules can narrow it.
//
// Notes
// -----
//   - Every query is parameterised; filters return clauses with args.
//   - Store satisfies sidebar.WidgetLookup.
package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/cache"
	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/request"
)

// ErrNotFound is returned when a single-object lookup matches nothing.
var ErrNotFound = errors.New("content: not found")

// LayoutMetaKey is the post meta key holding a per-post layout override.
const LayoutMetaKey = "_primer_layout"

// ActiveCategoriesResetID is the callback identity bound to the category
// and post events.
const ActiveCategoriesResetID = "primer_has_active_categories_reset"

// Post is one published post or page.
type Post struct {
	ID       int64     `db:"ID"`
	Slug     string    `db:"post_name"`
	Title    string    `db:"post_title"`
	Body     string    `db:"post_content"`
	Excerpt  string    `db:"post_excerpt"`
	Type     string    `db:"post_type"`
	Status   string    `db:"post_status"`
	Password string    `db:"post_password"`
	Date     time.Time `db:"post_date"`
	AuthorID int64     `db:"post_author"`
}

// Widget is one stored widget instance.
type Widget struct {
	ID       string            `db:"widget_id"`
	Type     string            `db:"widget_type"`
	Raw      []byte            `db:"settings"`
	Settings map[string]string `db:"-"`
}

const postColumns = `p.ID, p.post_name, p.post_title, p.post_content, p.post_excerpt,
       p.post_type, p.post_status, p.post_password, p.post_date, p.post_author`

const published = `p.post_status = 'publish'`

// Store runs the queries.  Safe for concurrent use.
type Store struct {
	db    *sqlx.DB
	hooks *hook.Registry
	log   *zap.Logger

	activeCats *cache.Lazy[bool]
}

// NewStore wraps db.  hooks carries posts_search; store holds the
// active-categories value.
func NewStore(db *sqlx.DB, hooks *hook.Registry, store *cache.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{db: db, hooks: hooks, log: log.Named("content")}
	s.activeCats = cache.NewLazy(store, "primer_has_active_categories", s.countActiveCategories)
	return s
}

// PostByID returns a published post of any type.
func (s *Store) PostByID(ctx context.Context, id int64) (*Post, error) {
	q := `SELECT ` + postColumns + ` FROM wp_posts p WHERE p.ID = ? AND ` + published
	var p Post
	if err := s.db.GetContext(ctx, &p, q, id); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// PostBySlug returns the published post of postType named slug.
func (s *Store) PostBySlug(ctx context.Context, slug, postType string) (*Post, error) {
	q := `SELECT ` + postColumns + ` FROM wp_posts p
	      WHERE p.post_name = ? AND p.post_type = ? AND ` + published + ` LIMIT 1`
	var p Post
	if err := s.db.GetContext(ctx, &p, q, slug, postType); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Recent returns the newest published posts.
func (s *Store) Recent(ctx context.Context, limit int) ([]Post, error) {
	q := `SELECT ` + postColumns + ` FROM wp_posts p
	      WHERE p.post_type = 'post' AND ` + published + `
	      ORDER BY p.post_date DESC LIMIT ?`
	var out []Post
	if err := s.db.SelectContext(ctx, &out, q, limit); err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	return out, nil
}

// Archive lists posts for an archive request.  Other page types return
// nil.
func (s *Store) Archive(ctx context.Context, req *request.Context, limit int) ([]Post, error) {
	var (
		where string
		join  string
		args  []any
	)
	switch req.Type {
	case request.Category, request.Tag:
		tax := "category"
		if req.Type == request.Tag {
			tax = "post_tag"
		}
		join = ` JOIN wp_term_relationships tr ON tr.object_id = p.ID
		         JOIN wp_term_taxonomy tt ON tt.term_taxonomy_id = tr.term_taxonomy_id
		         JOIN wp_terms t ON t.term_id = tt.term_id`
		where = ` AND tt.taxonomy = ? AND t.slug = ?`
		args = append(args, tax, req.Slug)
	case request.Date:
		where = ` AND YEAR(p.post_date) = ?`
		args = append(args, req.Year)
		if req.Month > 0 {
			where += ` AND MONTH(p.post_date) = ?`
			args = append(args, req.Month)
		}
	case request.Author:
		join = ` JOIN wp_users u ON u.ID = p.post_author`
		where = ` AND u.user_login = ?`
		args = append(args, req.Slug)
	default:
		return nil, nil
	}

	q := `SELECT ` + postColumns + ` FROM wp_posts p` + join + `
	      WHERE p.post_type = 'post' AND ` + published + where + `
	      ORDER BY p.post_date DESC LIMIT ?`
	args = append(args, limit)

	var out []Post
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("%s archive: %w", req.Type, err)
	}
	return out, nil
}

// Search runs the filtered search clause.  An empty clause lists nothing.
func (s *Store) Search(ctx context.Context, sq SearchQuery, limit int) ([]Post, error) {
	clause := hook.FilterAs(s.hooks, hook.PostsSearch, DefaultSearchClause(sq), sq)
	if clause.Empty() {
		return []Post{}, nil
	}

	q := `SELECT ` + postColumns + ` FROM wp_posts p
	      WHERE p.post_type = 'post' AND ` + published + clause.SQL + `
	      ORDER BY p.post_date DESC LIMIT ?`
	args := append(append([]any(nil), clause.Args...), limit)

	var out []Post
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return out, nil
}

// LayoutOverride returns the post's stored layout name or "".
func (s *Store) LayoutOverride(ctx context.Context, postID int64) (string, error) {
	const q = `SELECT meta_value FROM wp_postmeta WHERE post_id = ? AND meta_key = ? LIMIT 1`
	var v string
	err := s.db.GetContext(ctx, &v, q, postID, LayoutMetaKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("layout override %d: %w", postID, err)
	}
	return v, nil
}

// SidebarWidgets returns the widget ids assigned to each area, in
// position order.
func (s *Store) SidebarWidgets(ctx context.Context) (map[string][]string, error) {
	const q = `SELECT sidebar_id, widget_id FROM primer_sidebar_widgets ORDER BY sidebar_id, position`
	rows, err := s.db.QueryxContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var area, id string
		if err := rows.Scan(&area, &id); err != nil {
			return nil, err
		}
		out[area] = append(out[area], id)
	}
	return out, rows.Err()
}

// Widget loads one widget instance and decodes its settings.
func (s *Store) Widget(ctx context.Context, id string) (*Widget, error) {
	const q = `SELECT widget_id, widget_type, settings FROM primer_widgets WHERE widget_id = ?`
	var w Widget
	if err := s.db.GetContext(ctx, &w, q, id); err != nil {
		return nil, notFound(err)
	}
	w.Settings = map[string]string{}
	if len(w.Raw) > 0 {
		if err := json.Unmarshal(w.Raw, &w.Settings); err != nil {
			return nil, fmt.Errorf("widget %s settings: %w", id, err)
		}
	}
	return &w, nil
}

// HasActiveCategories reports whether more than one category holds
// published posts.  Entry meta shows the category list only then.  A
// lookup failure answers true.
func (s *Store) HasActiveCategories(ctx context.Context) bool {
	ok, err := s.activeCats.Get(ctx)
	if err != nil {
		s.log.Warn("active categories unavailable", zap.Error(err))
		return true
	}
	return ok
}

func (s *Store) countActiveCategories(ctx context.Context) (bool, error) {
	const q = `SELECT COUNT(DISTINCT tt.term_id) FROM wp_term_taxonomy tt
	           WHERE tt.taxonomy = 'category' AND tt.count > 0`
	var n int
	if err := s.db.GetContext(ctx, &n, q); err != nil {
		return false, err
	}
	return n > 1, nil
}

// BindInvalidation drops the active-categories value on category edits and
// post saves.
func (s *Store) BindInvalidation() error {
	for _, p := range []string{hook.CreateCategory, hook.EditCategory, hook.DeleteCategory, hook.SavePost} {
		_, err := s.hooks.AddAction(p, ActiveCategoriesResetID, hook.ActionFunc(s.activeCats.Invalidate), hook.WithArity(0))
		if err != nil {
			return fmt.Errorf("bind %s: %w", p, err)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
