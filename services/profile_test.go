package services_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"devconnector/models"
	"devconnector/repository/memory"
	"devconnector/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeGithub struct {
	repos []models.Repo
	err   error
	calls []string
}

func (f *fakeGithub) Repos(ctx context.Context, username string) ([]models.Repo, error) {
	f.calls = append(f.calls, username)
	return f.repos, f.err
}

func seedUser(t *testing.T, store *memory.Store, name string) string {
	t.Helper()
	u := &models.User{
		ID:     primitive.NewObjectID(),
		Name:   name,
		Email:  name + "@example.com",
		Avatar: "https://avatars.example.com/" + name,
		Date:   time.Now(),
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u.ID.Hex()
}

func strPtr(s string) *string { return &s }

func validProfile() services.ProfileInput {
	return services.ProfileInput{Status: "Developer", Skills: services.Skills{"go"}}
}

func TestUpsertProfile_CreatesThenUpdatesSingleDocument(t *testing.T) {
	store := memory.New()
	svc := services.NewProfileService(store, &fakeGithub{})
	ctx := context.Background()
	alice := seedUser(t, store, "alice")

	first, err := svc.UpsertProfile(ctx, alice, services.ProfileInput{
		Status:  "Junior Developer",
		Skills:  services.Skills(services.SplitSkills("js, node , react")),
		Company: "Acme",
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if want := []string{"js", "node", "react"}; !reflect.DeepEqual(first.Skills, want) {
		t.Fatalf("skills: got %q want %q", first.Skills, want)
	}
	if first.User == nil || first.User.Name != "alice" {
		t.Fatalf("expected joined user alice, got %#v", first.User)
	}

	second, err := svc.UpsertProfile(ctx, alice, services.ProfileInput{
		Status: "Senior Developer",
		Skills: services.Skills{"go"},
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a new document: %s != %s", second.ID.Hex(), first.ID.Hex())
	}
	if second.Status != "Senior Developer" || second.Company != "" {
		t.Fatalf("fields not replaced: %#v", second)
	}

	all, err := svc.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one profile, got %d", len(all))
	}
}

func TestUpsertProfile_ConcurrentUpsertsKeepOneProfile(t *testing.T) {
	store := memory.New()
	svc := services.NewProfileService(store, &fakeGithub{})
	alice := seedUser(t, store, "alice")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.UpsertProfile(context.Background(), alice, validProfile()); err != nil {
				t.Errorf("upsert: %v", err)
			}
		}()
	}
	wg.Wait()

	all, err := svc.ListProfiles(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one profile, got %d", len(all))
	}
}

func TestUpsertProfile_Validation(t *testing.T) {
	store := memory.New()
	svc := services.NewProfileService(store, &fakeGithub{})
	alice := seedUser(t, store, "alice")

	tests := []struct {
		name  string
		in    services.ProfileInput
		wants []string
	}{
		{name: "MissingBoth", in: services.ProfileInput{}, wants: []string{"Skills is required", "Status is required"}},
		{name: "MissingStatus", in: services.ProfileInput{Skills: services.Skills{"go"}}, wants: []string{"Status is required"}},
		{name: "EmptySkills", in: services.ProfileInput{Status: "Dev", Skills: services.Skills{}}, wants: []string{"Skills is required"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpsertProfile(context.Background(), alice, tc.in)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var verr *services.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			got := map[string]bool{}
			for _, f := range verr.Fields {
				got[f.Msg] = true
			}
			for _, w := range tc.wants {
				if !got[w] {
					t.Fatalf("missing message %q in %#v", w, verr.Fields)
				}
			}
			if len(verr.Fields) != len(tc.wants) {
				t.Fatalf("unexpected field errors: %#v", verr.Fields)
			}
		})
	}

	if _, err := svc.GetOwnProfile(context.Background(), alice); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("rejected upsert must not create a profile, got %v", err)
	}
}

func TestUpsertProfile_NormalizesLinks(t *testing.T) {
	store := memory.New()
	svc := services.NewProfileService(store, &fakeGithub{})
	alice := seedUser(t, store, "alice")

	in := validProfile()
	in.Website = "www.Example.com/"
	in.Twitter = strPtr("http://twitter.com/alice")
	in.Youtube = strPtr("")

	p, err := svc.UpsertProfile(context.Background(), alice, in)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.Website != "https://example.com" {
		t.Fatalf("website: got %q", p.Website)
	}
	if p.Social["twitter"] != "https://twitter.com/alice" {
		t.Fatalf("twitter: got %q", p.Social["twitter"])
	}
	if v, ok := p.Social["youtube"]; !ok || v != "" {
		t.Fatalf("empty youtube should stay empty, got %q (present=%t)", v, ok)
	}
	if _, ok := p.Social["facebook"]; ok {
		t.Fatalf("omitted facebook should stay absent")
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	store := memory.New()
	svc := services.NewProfileService(store, &fakeGithub{})
	alice := seedUser(t, store, "alice")
	ctx := context.Background()

	_, err := svc.GetOwnProfile(ctx, alice)
	if !errors.Is(err, services.ErrNotFound) || services.Message(err) != "There is no profile for this user" {
		t.Fatalf("own profile: got %v", err)
	}

	for _, id := range []string{"not-an-id", primitive.NewObjectID().Hex()} {
		_, err := svc.GetProfileByUser(ctx, id)
		if !errors.Is(err, services.ErrNotFound) || services.Message(err) != "Profile not found" {
			t.Fatalf("profile by user %q: got %v", id, err)
		}
	}

	if _, err := svc.GetOwnProfile(ctx, "garbage"); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("malformed actor: got %v", err)
	}
}

func TestExperience_PrependAndRemove(t *testing.T) {
	store := memory.New()
	svc := services.NewProfileService(store, &fakeGithub{})
	alice := seedUser(t, store, "alice")
	ctx := context.Background()

	if _, err := svc.AddExperience(ctx, alice, services.ExperienceInput{Title: "Dev", Company: "Acme", From: "2020-01-01"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("add without profile: got %v", err)
	}

	if _, err := svc.UpsertProfile(ctx, alice, validProfile()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if _, err := svc.AddExperience(ctx, alice, services.ExperienceInput{Company: "Acme", From: "2020-01-01"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("missing title: got %v", err)
	}
	if _, err := svc.AddExperience(ctx, alice, services.ExperienceInput{Title: "Dev", Company: "Acme", From: "yesterday"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("bad date: got %v", err)
	}

	if _, err := svc.AddExperience(ctx, alice, services.ExperienceInput{Title: "Intern", Company: "Acme", From: "2018-06-01", To: "2019-01-01"}); err != nil {
		t.Fatalf("add first: %v", err)
	}
	p, err := svc.AddExperience(ctx, alice, services.ExperienceInput{Title: "Engineer", Company: "Initech", From: "2019-02-01T00:00:00Z", Current: true})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if len(p.Experience) != 2 || p.Experience[0].Title != "Engineer" {
		t.Fatalf("expected newest entry first, got %#v", p.Experience)
	}
	if p.Experience[1].To == nil || p.Experience[0].To != nil {
		t.Fatalf("to dates not kept: %#v", p.Experience)
	}

	if _, err := svc.RemoveExperience(ctx, alice, primitive.NewObjectID().Hex()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("remove missing id: got %v", err)
	}
	if _, err := svc.RemoveExperience(ctx, alice, "bogus"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("remove malformed id: got %v", err)
	}
	p, err = svc.GetOwnProfile(ctx, alice)
	if err != nil || len(p.Experience) != 2 {
		t.Fatalf("failed removals must leave the list untouched: %v %#v", err, p)
	}

	p, err = svc.RemoveExperience(ctx, alice, p.Experience[0].ID.Hex())
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(p.Experience) != 1 || p.Experience[0].Title != "Intern" {
		t.Fatalf("wrong entry removed: %#v", p.Experience)
	}
}

func TestEducation_PrependAndRemove(t *testing.T) {
	store := memory.New()
	svc := services.NewProfileService(store, &fakeGithub{})
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	ctx := context.Background()

	for _, u := range []string{alice, bob} {
		if _, err := svc.UpsertProfile(ctx, u, validProfile()); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	_, err := svc.AddEducation(ctx, alice, services.EducationInput{School: "MIT", Degree: "BSc", From: "2010-09-01"})
	var verr *services.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 1 || verr.Fields[0].Msg != "Field of study is required" {
		t.Fatalf("missing fieldofstudy: got %v", err)
	}

	p, err := svc.AddEducation(ctx, alice, services.EducationInput{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2010-09-01"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	eduID := p.Education[0].ID.Hex()

	// entries are addressed through the actor's own profile only
	if _, err := svc.RemoveEducation(ctx, bob, eduID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("remove from another profile: got %v", err)
	}

	p, err = svc.RemoveEducation(ctx, alice, eduID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(p.Education) != 0 {
		t.Fatalf("expected empty education, got %#v", p.Education)
	}
}

func TestDeleteOwnAccount_RemovesPostsProfileAndUser(t *testing.T) {
	store := memory.New()
	profiles := services.NewProfileService(store, &fakeGithub{})
	posts := services.NewPostService(store)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	ctx := context.Background()

	if _, err := profiles.UpsertProfile(ctx, alice, validProfile()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	for _, text := range []string{"one", "two"} {
		if _, err := posts.CreatePost(ctx, alice, services.TextInput{Text: text}); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	if _, err := posts.CreatePost(ctx, bob, services.TextInput{Text: "bob's"}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := profiles.DeleteOwnAccount(ctx, alice); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	if _, err := profiles.GetOwnProfile(ctx, alice); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("profile still reachable: %v", err)
	}
	remaining, err := posts.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Text != "bob's" {
		t.Fatalf("expected only bob's post, got %#v", remaining)
	}
	uid, _ := primitive.ObjectIDFromHex(alice)
	if _, err := store.GetUserByID(ctx, uid); err == nil {
		t.Fatalf("user record still present")
	}
}

func TestDeleteOwnAccount_StopsOnStoreFailure(t *testing.T) {
	store := memory.New()
	profiles := services.NewProfileService(store, &fakeGithub{})
	alice := seedUser(t, store, "alice")

	store.Err = errors.New("connection reset")
	err := profiles.DeleteOwnAccount(context.Background(), alice)
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, kind := range []error{services.ErrNotFound, services.ErrUnauthorized, services.ErrValidation} {
		if errors.Is(err, kind) {
			t.Fatalf("store failure must surface as internal, got kind %v", kind)
		}
	}
	store.Err = nil

	uid, _ := primitive.ObjectIDFromHex(alice)
	if _, err := store.GetUserByID(context.Background(), uid); err != nil {
		t.Fatalf("user must survive a failed deletion: %v", err)
	}
}

func TestLookupGithubRepos(t *testing.T) {
	gh := &fakeGithub{repos: []models.Repo{{Name: "dotfiles"}}}
	svc := services.NewProfileService(memory.New(), gh)

	repos, err := svc.LookupGithubRepos(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(repos) != 1 || repos[0].Name != "dotfiles" {
		t.Fatalf("unexpected repos: %#v", repos)
	}

	cause := errors.New("github: status 502")
	gh.err = cause
	_, err = svc.LookupGithubRepos(context.Background(), "nobody-here")
	if !errors.Is(err, services.ErrUpstream) || services.Message(err) != "No Github profile found" {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !errors.Is(err, cause) || !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("upstream cause lost: %v", err)
	}
	if len(gh.calls) != 2 || gh.calls[1] != "nobody-here" {
		t.Fatalf("unexpected calls: %v", gh.calls)
	}
}
