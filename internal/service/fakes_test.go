package service

import (
	"bytes"
	"context"
	"filedock/internal/domain/file"
	"filedock/internal/domain/folder"
	"filedock/internal/domain/user"
	"filedock/internal/storage/s3"
	apperrors "filedock/pkg/errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory fakes mirroring the postgres repositories' contracts,
// including the error mapping the services depend on.

type memClock struct {
	mu  sync.Mutex
	seq int64
}

func (c *memClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return time.Unix(1700000000, 0).Add(time.Duration(c.seq) * time.Second)
}

type memFolderRepo struct {
	mu      sync.Mutex
	clock   *memClock
	folders map[uuid.UUID]*folder.Folder
	files   *memFileRepo
}

func newMemFolderRepo(clock *memClock) *memFolderRepo {
	return &memFolderRepo{clock: clock, folders: make(map[uuid.UUID]*folder.Folder)}
}

func (r *memFolderRepo) Create(_ context.Context, input folder.CreateFolderInput) (*folder.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.folders {
		if f.Name == input.Name && equalParent(f.ParentID, input.ParentID) {
			return nil, apperrors.Conflict("a folder with this name already exists here")
		}
	}

	f := &folder.Folder{
		ID:        uuid.New(),
		Name:      input.Name,
		ParentID:  input.ParentID,
		CreatedBy: input.CreatedBy,
		CreatedAt: r.clock.next(),
	}
	r.folders[f.ID] = f
	return cloneFolder(f), nil
}

func (r *memFolderRepo) GetByID(_ context.Context, id uuid.UUID) (*folder.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.folders[id]
	if !ok {
		return nil, apperrors.NotFound("folder not found")
	}
	return cloneFolder(f), nil
}

func (r *memFolderRepo) ListByParent(_ context.Context, parentID, ownerID *uuid.UUID) ([]*folder.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*folder.Folder, 0)
	for _, f := range r.folders {
		if !equalParent(f.ParentID, parentID) {
			continue
		}
		if ownerID != nil && f.CreatedBy != *ownerID {
			continue
		}
		out = append(out, cloneFolder(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memFolderRepo) ListAll(_ context.Context, ownerID *uuid.UUID) ([]*folder.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*folder.Folder, 0)
	for _, f := range r.folders {
		if ownerID != nil && f.CreatedBy != *ownerID {
			continue
		}
		out = append(out, cloneFolder(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memFolderRepo) Rename(_ context.Context, id uuid.UUID, name string) (*folder.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.folders[id]
	if !ok {
		return nil, apperrors.NotFound("folder not found")
	}
	for _, sibling := range r.folders {
		if sibling.ID != id && sibling.Name == name && equalParent(sibling.ParentID, f.ParentID) {
			return nil, apperrors.Conflict("a folder with this name already exists here")
		}
	}

	f.Name = name
	now := r.clock.next()
	f.UpdatedAt = &now
	return cloneFolder(f), nil
}

func (r *memFolderRepo) SetParent(_ context.Context, id uuid.UUID, parentID *uuid.UUID) (*folder.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.folders[id]
	if !ok {
		return nil, apperrors.NotFound("folder not found")
	}

	f.ParentID = parentID
	now := r.clock.next()
	f.UpdatedAt = &now
	return cloneFolder(f), nil
}

func (r *memFolderRepo) HasChildren(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.folders {
		if f.ParentID != nil && *f.ParentID == id {
			return true, nil
		}
	}
	if r.files != nil {
		r.files.mu.Lock()
		defer r.files.mu.Unlock()
		for _, f := range r.files.files {
			if f.FolderID != nil && *f.FolderID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *memFolderRepo) CollectSubtree(_ context.Context, rootID uuid.UUID) (*folder.Subtree, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.folders[rootID]; !ok {
		return nil, apperrors.NotFound("folder not found")
	}

	// Breadth-first collection, then reversed for bottom-up order.
	ordered := []*folder.Folder{cloneFolder(r.folders[rootID])}
	frontier := []uuid.UUID{rootID}
	inTree := map[uuid.UUID]bool{rootID: true}

	for len(frontier) > 0 {
		next := make([]uuid.UUID, 0)
		for _, f := range r.folders {
			if f.ParentID == nil || inTree[f.ID] {
				continue
			}
			for _, parent := range frontier {
				if *f.ParentID == parent {
					ordered = append(ordered, cloneFolder(f))
					inTree[f.ID] = true
					next = append(next, f.ID)
					break
				}
			}
		}
		frontier = next
	}

	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}

	subtree := &folder.Subtree{Folders: ordered}

	if r.files != nil {
		r.files.mu.Lock()
		defer r.files.mu.Unlock()
		for _, f := range r.files.files {
			if f.FolderID != nil && inTree[*f.FolderID] {
				subtree.Files = append(subtree.Files, folder.SubtreeFile{
					ID:         f.ID,
					FolderID:   *f.FolderID,
					StorageKey: f.StorageKey,
				})
			}
		}
	}

	return subtree, nil
}

func (r *memFolderRepo) DeleteRows(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if _, ok := r.folders[id]; ok {
			delete(r.folders, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memFolderRepo) DeleteOwnedBy(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, f := range r.folders {
		if f.CreatedBy == userID {
			delete(r.folders, id)
			deleted++
		}
	}
	return deleted, nil
}

type memFileRepo struct {
	mu    sync.Mutex
	clock *memClock
	files map[uuid.UUID]*file.File

	// forcedSlugErrors makes the next N slugged inserts fail with
	// ErrSlugTaken, simulating unique-constraint races.
	forcedSlugErrors int
}

func newMemFileRepo(clock *memClock) *memFileRepo {
	return &memFileRepo{clock: clock, files: make(map[uuid.UUID]*file.File)}
}

func (r *memFileRepo) Create(_ context.Context, input file.CreateFileInput) (*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if input.Slug != nil {
		if r.forcedSlugErrors > 0 {
			r.forcedSlugErrors--
			return nil, apperrors.ErrSlugTaken
		}
		for _, f := range r.files {
			if f.Slug != nil && *f.Slug == *input.Slug {
				return nil, apperrors.ErrSlugTaken
			}
		}
	}
	for _, f := range r.files {
		if f.StorageKey == input.StorageKey {
			return nil, apperrors.Conflict("storage key already exists")
		}
	}

	f := &file.File{
		ID:           uuid.New(),
		OriginalName: input.OriginalName,
		Slug:         input.Slug,
		StorageKey:   input.StorageKey,
		Size:         input.Size,
		ContentType:  input.ContentType,
		IsPublic:     input.IsPublic,
		Description:  input.Description,
		FileType:     input.FileType,
		Tags:         input.Tags,
		FolderID:     input.FolderID,
		UploadedBy:   input.UploadedBy,
		CreatedAt:    r.clock.next(),
	}
	r.files[f.ID] = f
	return cloneFile(f), nil
}

func (r *memFileRepo) GetByID(_ context.Context, id uuid.UUID) (*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok {
		return nil, apperrors.NotFound("file not found")
	}
	return cloneFile(f), nil
}

func (r *memFileRepo) GetBySlug(_ context.Context, slug string) (*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.files {
		if f.Slug != nil && *f.Slug == slug {
			return cloneFile(f), nil
		}
	}
	return nil, apperrors.NotFound("file not found")
}

func (r *memFileRepo) Update(_ context.Context, id uuid.UUID, input file.UpdateFileInput) (*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok {
		return nil, apperrors.NotFound("file not found")
	}

	if input.Slug != nil {
		if r.forcedSlugErrors > 0 {
			r.forcedSlugErrors--
			return nil, apperrors.ErrSlugTaken
		}
		for _, other := range r.files {
			if other.ID != id && other.Slug != nil && *other.Slug == *input.Slug {
				return nil, apperrors.ErrSlugTaken
			}
		}
		f.Slug = input.Slug
	}
	if input.IsPublic != nil {
		f.IsPublic = *input.IsPublic
	}
	if input.Description != nil {
		f.Description = input.Description
	}
	if input.FileType != nil {
		f.FileType = input.FileType
	}
	if input.Tags != nil {
		f.Tags = input.Tags
	}

	now := r.clock.next()
	f.UpdatedAt = &now
	return cloneFile(f), nil
}

func (r *memFileRepo) SetFolder(_ context.Context, id uuid.UUID, folderID *uuid.UUID) (*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok {
		return nil, apperrors.NotFound("file not found")
	}
	f.FolderID = folderID
	now := r.clock.next()
	f.UpdatedAt = &now
	return cloneFile(f), nil
}

func (r *memFileRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[id]; !ok {
		return apperrors.NotFound("file not found")
	}
	delete(r.files, id)
	return nil
}

func (r *memFileRepo) DeleteBatch(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if _, ok := r.files[id]; ok {
			delete(r.files, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memFileRepo) List(_ context.Context, filter file.ListFilesFilter) ([]*file.File, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*file.File, 0)
	for _, f := range r.files {
		if filter.OwnerID != nil && f.UploadedBy != *filter.OwnerID {
			continue
		}
		if filter.FolderScoped && !equalParent(f.FolderID, filter.FolderID) {
			continue
		}
		if filter.FileType != nil && (f.FileType == nil || *f.FileType != *filter.FileType) {
			continue
		}
		if filter.IsPublic != nil && f.IsPublic != *filter.IsPublic {
			continue
		}
		if filter.Search != "" && !matchesSearch(f, filter.Search) {
			continue
		}
		if len(filter.Tags) > 0 && !matchesTags(f, filter.Tags) {
			continue
		}
		matched = append(matched, cloneFile(f))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > total {
		end = total
	}

	return matched[start:end], total, nil
}

func (r *memFileRepo) ListByFolder(_ context.Context, folderID, ownerID *uuid.UUID) ([]*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*file.File, 0)
	for _, f := range r.files {
		if !equalParent(f.FolderID, folderID) {
			continue
		}
		if ownerID != nil && f.UploadedBy != *ownerID {
			continue
		}
		out = append(out, cloneFile(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OriginalName < out[j].OriginalName })
	return out, nil
}

func (r *memFileRepo) ListAllByOwner(_ context.Context, userID uuid.UUID) ([]*file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*file.File, 0)
	for _, f := range r.files {
		if f.UploadedBy == userID {
			out = append(out, cloneFile(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	clock *memClock
	users map[uuid.UUID]*user.User
}

func newMemUserRepo(clock *memClock) *memUserRepo {
	return &memUserRepo{clock: clock, users: make(map[uuid.UUID]*user.User)}
}

func (r *memUserRepo) Create(_ context.Context, input user.CreateUserInput) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, input.Email) {
			return nil, apperrors.Conflict("email already registered")
		}
	}

	now := r.clock.next()
	u := &user.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		IsAdmin:      input.IsAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[u.ID] = u
	return cloneUser(u), nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (r *memUserRepo) List(_ context.Context, limit, offset int) ([]*user.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memUserRepo) Update(_ context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}

	if input.Email != nil {
		u.Email = *input.Email
	}
	if input.PasswordHash != nil {
		u.PasswordHash = *input.PasswordHash
	}
	if input.IsAdmin != nil {
		u.IsAdmin = *input.IsAdmin
	}
	if input.IsActive != nil {
		u.IsActive = *input.IsActive
	}
	u.UpdatedAt = r.clock.next()
	return cloneUser(u), nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return apperrors.NotFound("user not found")
	}
	delete(r.users, id)
	return nil
}

type memBlobStore struct {
	mu      sync.Mutex
	keySeq  int
	objects map[string][]byte
	types   map[string]string

	deleteCalls []string
	failDeletes map[string]bool
	putErr      error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{
		objects:     make(map[string][]byte),
		types:       make(map[string]string),
		failDeletes: make(map[string]bool),
	}
}

func (b *memBlobStore) GenerateKey(originalName string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keySeq++
	return fmt.Sprintf("test/files/%04d-%s", b.keySeq, originalName)
}

func (b *memBlobStore) Put(_ context.Context, key string, body io.ReadSeeker, _ int64, contentType string) error {
	if b.putErr != nil {
		return b.putErr
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	return nil
}

func (b *memBlobStore) Get(_ context.Context, key string) (*s3.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.objects[key]
	if !ok {
		return nil, apperrors.NotFound("stored object not found")
	}

	return &s3.Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		Size:        int64(len(data)),
		ContentType: b.types[key],
	}, nil
}

func (b *memBlobStore) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.deleteCalls = append(b.deleteCalls, key)
	if b.failDeletes[key] {
		return apperrors.StorageFailure("failed to delete object", nil)
	}
	delete(b.objects, key)
	return nil
}

func (b *memBlobStore) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://blobs.test/signed/" + key, nil
}

func equalParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func matchesSearch(f *file.File, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(f.OriginalName), needle) {
		return true
	}
	return f.Description != nil && strings.Contains(strings.ToLower(*f.Description), needle)
}

func matchesTags(f *file.File, wanted []string) bool {
	if f.Tags == nil {
		return false
	}
	have := make(map[string]bool)
	for _, t := range strings.Split(*f.Tags, ",") {
		have[strings.TrimSpace(t)] = true
	}
	for _, w := range wanted {
		if have[w] {
			return true
		}
	}
	return false
}

func cloneFolder(f *folder.Folder) *folder.Folder {
	c := *f
	return &c
}

func cloneFile(f *file.File) *file.File {
	c := *f
	return &c
}

func cloneUser(u *user.User) *user.User {
	c := *u
	return &c
}
