package store

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/St0bbe/remix-of-our-little-pix/models"
)

func setupStore(t *testing.T) *PhotoStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Photo{},
		&models.Album{},
		&models.Comment{},
		&models.SharedLink{},
		&models.ActivityItem{},
	)
	require.NoError(t, err)

	s, err := New(db)
	require.NoError(t, err)
	return s
}

func newPhoto(child string, category models.PhotoCategory, date string) NewPhoto {
	return NewPhoto{
		FilePath:  "/images/" + child + ".jpg",
		Date:      date,
		Category:  category,
		ChildName: child,
	}
}

func addOne(t *testing.T, s *PhotoStore, entry NewPhoto) models.Photo {
	t.Helper()
	photos, err := s.AddPhotos([]NewPhoto{entry}, "")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	return photos[0]
}

func TestDefaultAlbumSeeding(t *testing.T) {
	s := setupStore(t)

	albums, err := s.Albums()
	require.NoError(t, err)
	assert.Len(t, albums, 5)

	// Re-initializing over the same database must not duplicate the seed
	s2, err := New(s.db)
	require.NoError(t, err)
	albums, err = s2.Albums()
	require.NoError(t, err)
	assert.Len(t, albums, 5)
}

func TestAddPhotos(t *testing.T) {
	s := setupStore(t)

	t.Run("assigns id and timestamp", func(t *testing.T) {
		photo := addOne(t, s, newPhoto("Ana", models.CategoryAlone, "2024-06-15"))
		assert.NotEqual(t, uuid.Nil, photo.ID)
		assert.False(t, photo.CreatedAt.IsZero())
	})

	t.Run("empty child name fails validation", func(t *testing.T) {
		_, err := s.AddPhotos([]NewPhoto{newPhoto("   ", models.CategoryAlone, "2024-06-15")}, "")
		assert.True(t, IsValidation(err))
	})

	t.Run("invalid category fails validation", func(t *testing.T) {
		_, err := s.AddPhotos([]NewPhoto{newPhoto("Ana", "selfie", "2024-06-15")}, "")
		assert.True(t, IsValidation(err))
	})

	t.Run("invalid date fails validation", func(t *testing.T) {
		_, err := s.AddPhotos([]NewPhoto{newPhoto("Ana", models.CategoryAlone, "June 15")}, "")
		assert.True(t, IsValidation(err))
	})

	t.Run("bad entry anywhere in the batch blocks the whole batch", func(t *testing.T) {
		before, err := s.PhotoCount()
		require.NoError(t, err)

		_, err = s.AddPhotos([]NewPhoto{
			newPhoto("Bea", models.CategoryAlone, "2024-06-15"),
			newPhoto("", models.CategoryAlone, "2024-06-15"),
		}, "")
		assert.True(t, IsValidation(err))

		after, err := s.PhotoCount()
		require.NoError(t, err)
		assert.Equal(t, before, after, "no partial application")
	})

	t.Run("unknown album fails validation", func(t *testing.T) {
		entry := newPhoto("Ana", models.CategoryAlone, "2024-06-15")
		missing := uuid.New()
		entry.AlbumID = &missing
		_, err := s.AddPhotos([]NewPhoto{entry}, "")
		assert.True(t, IsValidation(err))
	})

	t.Run("records photo-added activity", func(t *testing.T) {
		items, err := s.Activity(0)
		require.NoError(t, err)
		require.NotEmpty(t, items)
		assert.Equal(t, models.ActivityPhotoAdded, items[0].Kind)
	})

	t.Run("notifies observers with the new total", func(t *testing.T) {
		var got ChangeEvent
		s.OnChange(func(e ChangeEvent) { got = e })

		addOne(t, s, newPhoto("Ana", models.CategoryAlone, "2024-07-01"))

		total, err := s.PhotoCount()
		require.NoError(t, err)
		assert.Equal(t, total, got.TotalPhotos)
	})
}

func TestUpdatePhoto(t *testing.T) {
	s := setupStore(t)
	photo := addOne(t, s, newPhoto("Ana", models.CategoryAlone, "2024-06-15"))

	t.Run("patches only the set fields", func(t *testing.T) {
		title := "First steps"
		category := models.CategoryWithParents
		updated, err := s.UpdatePhoto(photo.ID, models.PhotoPatch{Title: &title, Category: &category})
		require.NoError(t, err)

		assert.Equal(t, "First steps", updated.Title)
		assert.Equal(t, models.CategoryWithParents, updated.Category)
		assert.Equal(t, "Ana", updated.ChildName, "unset fields untouched")
		assert.Equal(t, "2024-06-15", updated.Date)
	})

	t.Run("missing photo yields not found", func(t *testing.T) {
		title := "x"
		_, err := s.UpdatePhoto(uuid.New(), models.PhotoPatch{Title: &title})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid patch value is rejected", func(t *testing.T) {
		bad := models.PhotoCategory("selfie")
		_, err := s.UpdatePhoto(photo.ID, models.PhotoPatch{Category: &bad})
		assert.True(t, IsValidation(err))
	})

	t.Run("album can be set and cleared", func(t *testing.T) {
		albums, err := s.Albums()
		require.NoError(t, err)
		albumID := albums[0].ID

		updated, err := s.UpdatePhoto(photo.ID, models.PhotoPatch{AlbumID: &albumID})
		require.NoError(t, err)
		require.NotNil(t, updated.AlbumID)
		assert.Equal(t, albumID, *updated.AlbumID)

		updated, err = s.UpdatePhoto(photo.ID, models.PhotoPatch{ClearAlbum: true})
		require.NoError(t, err)
		assert.Nil(t, updated.AlbumID)
	})
}

func TestToggleFavorite(t *testing.T) {
	s := setupStore(t)
	photo := addOne(t, s, newPhoto("Ana", models.CategoryAlone, "2024-06-15"))

	countFavoriteActivity := func() int {
		items, err := s.Activity(0)
		require.NoError(t, err)
		n := 0
		for _, item := range items {
			if item.Kind == models.ActivityPhotoFavorited {
				n++
			}
		}
		return n
	}

	t.Run("double toggle restores state and logs exactly once", func(t *testing.T) {
		updated, err := s.ToggleFavorite(photo.ID, "mom@family.com")
		require.NoError(t, err)
		assert.True(t, updated.IsFavorite)

		updated, err = s.ToggleFavorite(photo.ID, "mom@family.com")
		require.NoError(t, err)
		assert.False(t, updated.IsFavorite)

		assert.Equal(t, 1, countFavoriteActivity(), "only the false-to-true transition logs")
	})

	t.Run("missing photo yields not found", func(t *testing.T) {
		_, err := s.ToggleFavorite(uuid.New(), "mom@family.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeletePhoto(t *testing.T) {
	s := setupStore(t)
	photo := addOne(t, s, newPhoto("Ana", models.CategoryAlone, "2024-06-15"))

	t.Run("removes the photo and its comments", func(t *testing.T) {
		_, err := s.AddComment(photo.ID, "so cute", "dad@family.com", nil)
		require.NoError(t, err)

		require.NoError(t, s.DeletePhoto(photo.ID, ""))

		_, err = s.GetPhoto(photo.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		comments, err := s.Comments(photo.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("deleting an already-deleted photo is a silent no-op", func(t *testing.T) {
		assert.NoError(t, s.DeletePhoto(photo.ID, ""))
	})
}

func TestAddComment(t *testing.T) {
	s := setupStore(t)
	photo := addOne(t, s, newPhoto("Ana", models.CategoryAlone, "2024-06-15"))

	t.Run("valid comment is appended", func(t *testing.T) {
		comment, err := s.AddComment(photo.ID, "  lovely photo  ", "mom@family.com", nil)
		require.NoError(t, err)
		assert.Equal(t, "lovely photo", comment.Text)
		assert.NotEqual(t, uuid.Nil, comment.ID)
	})

	t.Run("empty and oversized comments are rejected", func(t *testing.T) {
		_, err := s.AddComment(photo.ID, "   ", "mom@family.com", nil)
		assert.True(t, IsValidation(err))

		long := make([]byte, models.MaxCommentLength+1)
		for i := range long {
			long[i] = 'a'
		}
		_, err = s.AddComment(photo.ID, string(long), "mom@family.com", nil)
		assert.True(t, IsValidation(err))
	})

	t.Run("comment text is sanitized", func(t *testing.T) {
		comment, err := s.AddComment(photo.ID, "<script>alert(1)</script>", "mom@family.com", nil)
		require.NoError(t, err)
		assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", comment.Text)
	})

	t.Run("reply to a top-level comment succeeds", func(t *testing.T) {
		parent, err := s.AddComment(photo.ID, "parent", "mom@family.com", nil)
		require.NoError(t, err)

		reply, err := s.AddComment(photo.ID, "reply", "dad@family.com", &parent.ID)
		require.NoError(t, err)
		require.NotNil(t, reply.ParentID)
		assert.Equal(t, parent.ID, *reply.ParentID)

		// Replying to the reply is one level too deep
		_, err = s.AddComment(photo.ID, "reply to reply", "mom@family.com", &reply.ID)
		assert.True(t, IsValidation(err))
	})

	t.Run("parent must belong to the same photo", func(t *testing.T) {
		other := addOne(t, s, newPhoto("Bea", models.CategoryAlone, "2024-06-16"))
		parent, err := s.AddComment(other.ID, "elsewhere", "mom@family.com", nil)
		require.NoError(t, err)

		_, err = s.AddComment(photo.ID, "cross-photo reply", "dad@family.com", &parent.ID)
		assert.True(t, IsValidation(err))
	})

	t.Run("missing photo yields not found", func(t *testing.T) {
		_, err := s.AddComment(uuid.New(), "hello", "mom@family.com", nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("comments come back in insertion order", func(t *testing.T) {
		fresh := addOne(t, s, newPhoto("Cid", models.CategoryAlone, "2024-06-17"))
		for i := 0; i < 3; i++ {
			_, err := s.AddComment(fresh.ID, fmt.Sprintf("comment %d", i), "mom@family.com", nil)
			require.NoError(t, err)
		}
		comments, err := s.Comments(fresh.ID)
		require.NoError(t, err)
		require.Len(t, comments, 3)
		for i, comment := range comments {
			assert.Equal(t, fmt.Sprintf("comment %d", i), comment.Text)
		}
	})
}

func TestFilterPhotos(t *testing.T) {
	s := setupStore(t)

	albums, err := s.Albums()
	require.NoError(t, err)
	a1 := albums[0].ID

	p1 := newPhoto("Ana", models.CategoryAlone, "2024-06-01")
	p1.AlbumID = &a1
	photo1 := addOne(t, s, p1)

	photo2 := addOne(t, s, newPhoto("Ana", models.CategoryWithParents, "2024-06-02"))

	p3 := newPhoto("Bea", models.CategoryAlone, "2024-06-03")
	p3.AlbumID = &a1
	photo3 := addOne(t, s, p3)

	ids := func(photos []models.Photo) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(photos))
		for _, p := range photos {
			out = append(out, p.ID)
		}
		return out
	}

	t.Run("predicates AND-combine", func(t *testing.T) {
		photos, err := s.FilterPhotos(string(models.CategoryAlone), "Ana", FilterAll)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{photo1.ID}, ids(photos))
	})

	t.Run("album filter alone", func(t *testing.T) {
		photos, err := s.FilterPhotos(FilterAll, FilterAll, a1.String())
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{photo1.ID, photo3.ID}, ids(photos))
	})

	t.Run("all sentinels match everything", func(t *testing.T) {
		photos, err := s.FilterPhotos(FilterAll, FilterAll, FilterAll)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{photo1.ID, photo2.ID, photo3.ID}, ids(photos))
	})
}

func TestPhotosByMonth(t *testing.T) {
	s := setupStore(t)

	addOne(t, s, newPhoto("Ana", models.CategoryAlone, "2024-05-20"))
	addOne(t, s, newPhoto("Ana", models.CategoryAlone, "2024-06-01"))
	addOne(t, s, newPhoto("Bea", models.CategoryAlone, "2024-06-15"))

	groups, err := s.PhotosByMonth()
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "2024-06", groups[0].Month, "newest month first")
	assert.Len(t, groups[0].Photos, 2)
	assert.Equal(t, "2024-05", groups[1].Month)
	assert.Len(t, groups[1].Photos, 1)
}

func TestFavoritesAndChildren(t *testing.T) {
	s := setupStore(t)

	photo1 := addOne(t, s, newPhoto("Ana", models.CategoryAlone, "2024-06-01"))
	addOne(t, s, newPhoto("Bea", models.CategoryAlone, "2024-06-02"))

	_, err := s.ToggleFavorite(photo1.ID, "mom@family.com")
	require.NoError(t, err)

	favorites, err := s.Favorites()
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, photo1.ID, favorites[0].ID)

	children, err := s.Children()
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Bea"}, children)
}

func TestAlbums(t *testing.T) {
	s := setupStore(t)

	t.Run("add album normalizes icon and trims name", func(t *testing.T) {
		album, err := s.AddAlbum(NewAlbum{Name: "  Summer  ", Icon: "rocket", Color: "hsl(10, 50%, 50%)"})
		require.NoError(t, err)
		assert.Equal(t, "Summer", album.Name)
		assert.Equal(t, models.DefaultAlbumIcon, album.Icon)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := s.AddAlbum(NewAlbum{Name: "   "})
		assert.True(t, IsValidation(err))
	})

	t.Run("update album", func(t *testing.T) {
		album, err := s.AddAlbum(NewAlbum{Name: "Trips"})
		require.NoError(t, err)

		name := "Adventures"
		public := true
		updated, err := s.UpdateAlbum(album.ID, models.AlbumPatch{Name: &name, IsPublic: &public})
		require.NoError(t, err)
		assert.Equal(t, "Adventures", updated.Name)
		assert.True(t, updated.IsPublic)
	})

	t.Run("delete detaches member photos instead of cascading", func(t *testing.T) {
		album, err := s.AddAlbum(NewAlbum{Name: "Beach"})
		require.NoError(t, err)

		var members []models.Photo
		for i := 0; i < 3; i++ {
			entry := newPhoto(fmt.Sprintf("Kid%d", i), models.CategoryAlone, "2024-06-01")
			entry.AlbumID = &album.ID
			members = append(members, addOne(t, s, entry))
		}

		require.NoError(t, s.DeleteAlbum(album.ID))

		_, err = s.GetAlbum(album.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		for _, member := range members {
			photo, err := s.GetPhoto(member.ID)
			require.NoError(t, err, "photo must survive album deletion")
			assert.Nil(t, photo.AlbumID, "album reference must be cleared")
		}
	})

	t.Run("deleting a missing album yields not found", func(t *testing.T) {
		assert.ErrorIs(t, s.DeleteAlbum(uuid.New()), ErrNotFound)
	})
}

func TestActivityCap(t *testing.T) {
	s := setupStore(t)
	photo := addOne(t, s, newPhoto("Ana", models.CategoryAlone, "2024-06-01"))

	// The add above logged one entry; push well past the cap
	for i := 0; i < activityCap+20; i++ {
		_, err := s.AddComment(photo.ID, fmt.Sprintf("comment %d", i), "mom@family.com", nil)
		require.NoError(t, err)
	}

	items, err := s.Activity(0)
	require.NoError(t, err)
	assert.Len(t, items, activityCap)

	// Oldest entries are the ones evicted
	assert.Equal(t, models.ActivityCommentAdded, items[len(items)-1].Kind)
	assert.Equal(t, fmt.Sprintf("comment %d", 20), items[len(items)-1].CommentText)
}

func TestGetStats(t *testing.T) {
	s := setupStore(t)

	albums, err := s.Albums()
	require.NoError(t, err)
	a1 := albums[0].ID

	entry := newPhoto("Ana", models.CategoryAlone, "2024-06-01")
	entry.AlbumID = &a1
	photo := addOne(t, s, entry)
	addOne(t, s, newPhoto("Bea", models.CategoryWithParents, "2024-06-02"))

	_, err = s.ToggleFavorite(photo.ID, "mom@family.com")
	require.NoError(t, err)

	stats, err := s.GetStats()
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalPhotos)
	assert.Equal(t, int64(5), stats.TotalAlbums)
	assert.Equal(t, int64(1), stats.Favorites)
	assert.Equal(t, int64(1), stats.ByCategory[string(models.CategoryAlone)])
	assert.Equal(t, int64(1), stats.ByChild["Ana"])
	assert.Equal(t, int64(1), stats.ByAlbum[a1.String()])
}
