package services

import (
	"context"
	"errors"
	"fmt"

	"devconnector/models"
	"devconnector/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgNoProfile = "There is no profile for this user"

// GithubLookup returns the latest public repositories of a GitHub account.
type GithubLookup interface {
	Repos(ctx context.Context, username string) ([]models.Repo, error)
}

type ProfileInput struct {
	Company        string  `json:"company"`
	Location       string  `json:"location"`
	Website        string  `json:"website"`
	Bio            string  `json:"bio"`
	Skills         Skills  `json:"skills" validate:"required,min=1"`
	Status         string  `json:"status" validate:"required"`
	GithubUsername string  `json:"githubusername"`
	Youtube        *string `json:"youtube"`
	Twitter        *string `json:"twitter"`
	Facebook       *string `json:"facebook"`
	Linkedin       *string `json:"linkedin"`
	Instagram      *string `json:"instagram"`
}

func (in *ProfileInput) social() map[string]*string {
	return map[string]*string{
		"youtube":   in.Youtube,
		"twitter":   in.Twitter,
		"facebook":  in.Facebook,
		"linkedin":  in.Linkedin,
		"instagram": in.Instagram,
	}
}

type ExperienceInput struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type EducationInput struct {
	School       string `json:"school" validate:"required"`
	Degree       string `json:"degree" validate:"required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required"`
	From         string `json:"from" validate:"required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

type ProfileService struct {
	users    repository.UserRepo
	profiles repository.ProfileRepo
	posts    repository.PostRepo
	github   GithubLookup
}

func NewProfileService(store repository.Store, github GithubLookup) *ProfileService {
	return &ProfileService{users: store, profiles: store, posts: store, github: github}
}

func (s *ProfileService) GetOwnProfile(ctx context.Context, actor string) (*models.Profile, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, uid, msgNoProfile)
}

func (s *ProfileService) GetProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	uid, err := documentID(userID, "Profile not found")
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, uid, "Profile not found")
}

func (s *ProfileService) profileOf(ctx context.Context, uid primitive.ObjectID, notFoundMsg string) (*models.Profile, error) {
	p, err := s.profiles.GetProfileByUser(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, notFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return s.join(ctx, p)
}

func (s *ProfileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	ids := make([]primitive.ObjectID, len(profiles))
	for i := range profiles {
		ids[i] = profiles[i].UserID
	}
	refs, err := s.users.GetUserRefs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("join users: %w", err)
	}
	for i := range profiles {
		profiles[i].User = refs[profiles[i].UserID]
	}
	return profiles, nil
}

// UpsertProfile creates the actor's profile or replaces its listed fields.
func (s *ProfileService) UpsertProfile(ctx context.Context, actor string, in ProfileInput) (*models.Profile, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	website, err := NormalizeURL(in.Website)
	if err != nil {
		return nil, fieldError("website", "Website is not a valid URL")
	}

	social := models.Social{}
	for platform, v := range in.social() {
		if v == nil {
			continue
		}
		link, err := NormalizeURL(*v)
		if err != nil {
			return nil, fieldError(platform, "Social link "+platform+" is not a valid URL")
		}
		social[platform] = link
	}

	fields := repository.ProfileFields{
		Company:        in.Company,
		Location:       in.Location,
		Website:        website,
		Bio:            in.Bio,
		Skills:         []string(in.Skills),
		Status:         in.Status,
		GithubUsername: in.GithubUsername,
		Social:         social,
	}

	p, err := s.profiles.UpsertProfile(ctx, uid, fields)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return s.join(ctx, p)
}

// DeleteOwnAccount removes the actor's posts, then the profile, then the user record.
// The user goes last so a failed run can be retried with the same token.
func (s *ProfileService) DeleteOwnAccount(ctx context.Context, actor string) error {
	uid, err := actorID(actor)
	if err != nil {
		return err
	}
	if _, err := s.posts.DeletePostsByUser(ctx, uid); err != nil {
		return fmt.Errorf("delete posts: %w", err)
	}
	if err := s.profiles.DeleteProfileByUser(ctx, uid); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if err := s.users.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *ProfileService) AddExperience(ctx context.Context, actor string, in ExperienceInput) (*models.Profile, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.From, in.To)
	if err != nil {
		return nil, err
	}

	exp := models.Experience{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: in.Description,
	}
	p, err := s.profiles.PrependExperience(ctx, uid, exp)
	return s.mutated(ctx, p, err, msgNoProfile)
}

func (s *ProfileService) RemoveExperience(ctx context.Context, actor, expID string) (*models.Profile, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	id, err := documentID(expID, "Experience not found")
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.RemoveExperience(ctx, uid, id)
	return s.mutated(ctx, p, err, "Experience not found")
}

func (s *ProfileService) AddEducation(ctx context.Context, actor string, in EducationInput) (*models.Profile, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.From, in.To)
	if err != nil {
		return nil, err
	}

	edu := models.Education{
		ID:           primitive.NewObjectID(),
		School:       in.School,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  in.Description,
	}
	p, err := s.profiles.PrependEducation(ctx, uid, edu)
	return s.mutated(ctx, p, err, msgNoProfile)
}

func (s *ProfileService) RemoveEducation(ctx context.Context, actor, eduID string) (*models.Profile, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	id, err := documentID(eduID, "Education not found")
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.RemoveEducation(ctx, uid, id)
	return s.mutated(ctx, p, err, "Education not found")
}

// LookupGithubRepos reports any upstream failure as a missing GitHub profile.
func (s *ProfileService) LookupGithubRepos(ctx context.Context, username string) ([]models.Repo, error) {
	repos, err := s.github.Repos(ctx, username)
	if err != nil {
		return nil, &Error{Kind: ErrUpstream, Msg: "No Github profile found", Err: err}
	}
	return repos, nil
}

func (s *ProfileService) mutated(ctx context.Context, p *models.Profile, err error, notFoundMsg string) (*models.Profile, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, notFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.join(ctx, p)
}

func (s *ProfileService) join(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	refs, err := s.users.GetUserRefs(ctx, []primitive.ObjectID{p.UserID})
	if err != nil {
		return nil, fmt.Errorf("join user: %w", err)
	}
	p.User = refs[p.UserID]
	return p, nil
}
