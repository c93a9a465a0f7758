// Package memory is an in-process document store. It backs the test suites and
// DB_DRIVER=memory for running the API without MongoDB.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"devconnector/models"
	"devconnector/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]models.User
	profiles map[primitive.ObjectID]models.Profile // keyed by owning user
	posts    map[primitive.ObjectID]models.Post

	// Err, when set, is returned by every call. Tests use it to simulate store outages.
	Err error
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:    make(map[primitive.ObjectID]models.User),
		profiles: make(map[primitive.ObjectID]models.Profile),
		posts:    make(map[primitive.ObjectID]models.Post),
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.Err }

func (s *Store) Disconnect(ctx context.Context) error { return nil }

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrConflict
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetUserRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	refs := make(map[primitive.ObjectID]*models.UserRef, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			refs[id] = u.Ref()
		}
	}
	return refs, nil
}

func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.users, id)
	return nil
}

// Profiles

func (s *Store) GetProfileByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyProfile(p), nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *copyProfile(p))
	}
	// map order is random; keep listings stable by creation
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s *Store) UpsertProfile(ctx context.Context, userID primitive.ObjectID, f repository.ProfileFields) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.profiles[userID]
	if !ok {
		p = models.Profile{
			ID:         primitive.NewObjectID(),
			UserID:     userID,
			Experience: []models.Experience{},
			Education:  []models.Education{},
			Date:       time.Now().UTC(),
		}
	}
	p.Company = f.Company
	p.Location = f.Location
	p.Website = f.Website
	p.Bio = f.Bio
	p.Skills = append([]string(nil), f.Skills...)
	p.Status = f.Status
	p.GithubUsername = f.GithubUsername
	p.Social = models.Social{}
	for k, v := range f.Social {
		p.Social[k] = v
	}
	s.profiles[userID] = p
	return copyProfile(p), nil
}

func (s *Store) DeleteProfileByUser(ctx context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.profiles, userID)
	return nil
}

func (s *Store) PrependExperience(ctx context.Context, userID primitive.ObjectID, e models.Experience) (*models.Profile, error) {
	return s.mutateProfile(userID, func(p *models.Profile) bool {
		p.Experience = append([]models.Experience{e}, p.Experience...)
		return true
	})
}

func (s *Store) RemoveExperience(ctx context.Context, userID, expID primitive.ObjectID) (*models.Profile, error) {
	return s.mutateProfile(userID, func(p *models.Profile) bool {
		for i := range p.Experience {
			if p.Experience[i].ID == expID {
				p.Experience = append(p.Experience[:i:i], p.Experience[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (s *Store) PrependEducation(ctx context.Context, userID primitive.ObjectID, e models.Education) (*models.Profile, error) {
	return s.mutateProfile(userID, func(p *models.Profile) bool {
		p.Education = append([]models.Education{e}, p.Education...)
		return true
	})
}

func (s *Store) RemoveEducation(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error) {
	return s.mutateProfile(userID, func(p *models.Profile) bool {
		for i := range p.Education {
			if p.Education[i].ID == eduID {
				p.Education = append(p.Education[:i:i], p.Education[i+1:]...)
				return true
			}
		}
		return false
	})
}

// mutateProfile applies fn to a private copy and stores it only when fn reports a change.
func (s *Store) mutateProfile(userID primitive.ObjectID, fn func(*models.Profile) bool) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	stored, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := copyProfile(stored)
	if !fn(p) {
		return nil, repository.ErrNotFound
	}
	s.profiles[userID] = *p
	return copyProfile(*p), nil
}

// Posts

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.posts[p.ID] = *copyPost(*p)
	return nil
}

func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, *copyPost(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) GetPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyPost(p), nil
}

func (s *Store) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) DeletePostsByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for id, p := range s.posts {
		if p.UserID == userID {
			delete(s.posts, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) AddLike(ctx context.Context, postID primitive.ObjectID, like models.Like) ([]models.Like, error) {
	p, err := s.mutatePost(postID, func(p *models.Post) bool {
		if p.LikedBy(like.UserID) {
			return false
		}
		p.Likes = append([]models.Like{like}, p.Likes...)
		return true
	})
	if err != nil {
		return nil, err
	}
	return p.Likes, nil
}

func (s *Store) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) ([]models.Like, error) {
	p, err := s.mutatePost(postID, func(p *models.Post) bool {
		kept := p.Likes[:0:0]
		for _, l := range p.Likes {
			if l.UserID != userID {
				kept = append(kept, l)
			}
		}
		if len(kept) == len(p.Likes) {
			return false
		}
		p.Likes = kept
		return true
	})
	if err != nil {
		return nil, err
	}
	return p.Likes, nil
}

func (s *Store) PrependComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) ([]models.Comment, error) {
	p, err := s.mutatePost(postID, func(p *models.Post) bool {
		p.Comments = append([]models.Comment{c}, p.Comments...)
		return true
	})
	if err != nil {
		return nil, err
	}
	return p.Comments, nil
}

func (s *Store) RemoveComment(ctx context.Context, postID, commentID, userID primitive.ObjectID) ([]models.Comment, error) {
	p, err := s.mutatePost(postID, func(p *models.Post) bool {
		for i, c := range p.Comments {
			if c.ID == commentID && c.UserID == userID {
				p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return p.Comments, nil
}

// mutatePost mirrors the guarded updates of the Mongo store: ErrNotFound when the
// post is missing, ErrConflict when fn rejects the change.
func (s *Store) mutatePost(id primitive.ObjectID, fn func(*models.Post) bool) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	stored, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := copyPost(stored)
	if !fn(p) {
		return nil, repository.ErrConflict
	}
	s.posts[id] = *p
	return copyPost(*p), nil
}

func copyProfile(p models.Profile) *models.Profile {
	p.Skills = append([]string(nil), p.Skills...)
	p.Experience = append([]models.Experience{}, p.Experience...)
	p.Education = append([]models.Education{}, p.Education...)
	if p.Social != nil {
		social := make(models.Social, len(p.Social))
		for k, v := range p.Social {
			social[k] = v
		}
		p.Social = social
	}
	return &p
}

func copyPost(p models.Post) *models.Post {
	p.Likes = append([]models.Like{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return &p
}
