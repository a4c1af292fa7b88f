package handler

import (
	"time"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/photo"
	"github.com/msomdec/gallery-admin/internal/service"
)

// PhotoDTO is the JSON representation of a gallery photo.
type PhotoDTO struct {
	ID          string   `json:"id"`
	Src         string   `json:"src"`
	Alt         string   `json:"alt"`
	Location    string   `json:"location"`
	Year        string   `json:"year"`
	Tags        []string `json:"tags"`
	Description string   `json:"description,omitempty"`
	Edited      bool     `json:"edited,omitempty"`
	Added       bool     `json:"added,omitempty"`
}

func toPhotoDTO(p domain.Photo) PhotoDTO {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PhotoDTO{
		ID:          p.ID,
		Src:         p.Src,
		Alt:         p.Alt,
		Location:    p.Location,
		Year:        p.Year,
		Tags:        tags,
		Description: p.Description,
	}
}

func toPhotoDTOs(photos []domain.Photo) []PhotoDTO {
	dtos := make([]PhotoDTO, len(photos))
	for i, p := range photos {
		dtos[i] = toPhotoDTO(p)
	}
	return dtos
}

func toPhotoStateDTOs(states []service.PhotoState) []PhotoDTO {
	dtos := make([]PhotoDTO, len(states))
	for i, s := range states {
		dtos[i] = toPhotoDTO(s.Photo)
		dtos[i].Edited = s.Edited
		dtos[i].Added = s.Added
	}
	return dtos
}

// StatsDTO is the JSON representation of session counters.
type StatsDTO struct {
	Total           int    `json:"total"`
	Active          int    `json:"active"`
	Edited          int    `json:"edited"`
	Deleted         int    `json:"deleted"`
	Added           int    `json:"added"`
	MissingLocation int    `json:"missingLocation"`
	MissingYear     int    `json:"missingYear"`
	State           string `json:"state"`
	BaseSHA         string `json:"baseSha"`
}

func toStatsDTO(g *service.GallerySession) StatsDTO {
	s := g.Stats()
	return StatsDTO{
		Total:           s.Total,
		Active:          s.Active,
		Edited:          s.Edited,
		Deleted:         s.Deleted,
		Added:           s.Added,
		MissingLocation: s.MissingLocation,
		MissingYear:     s.MissingYear,
		State:           string(g.State()),
		BaseSHA:         g.BaseSHA(),
	}
}

// CommitResultDTO is the JSON representation of a successful commit.
type CommitResultDTO struct {
	PreviousSHA string `json:"previousSha"`
	SHA         string `json:"sha"`
	Edits       int    `json:"edits"`
	Deletions   int    `json:"deletions"`
	Additions   int    `json:"additions"`
}

func toCommitResultDTO(r *service.CommitResult) CommitResultDTO {
	return CommitResultDTO{
		PreviousSHA: r.PreviousSHA,
		SHA:         r.SHA,
		Edits:       r.Edits,
		Deletions:   r.Deletions,
		Additions:   r.Additions,
	}
}

// CommitRecordDTO is the JSON representation of a commit log entry.
type CommitRecordDTO struct {
	ID          int64  `json:"id"`
	Path        string `json:"path"`
	Message     string `json:"message"`
	PreviousSHA string `json:"previousSha"`
	NewSHA      string `json:"sha"`
	Edits       int    `json:"edits"`
	Deletions   int    `json:"deletions"`
	Additions   int    `json:"additions"`
	CreatedAt   string `json:"createdAt"`
}

func toCommitRecordDTOs(records []domain.CommitRecord) []CommitRecordDTO {
	dtos := make([]CommitRecordDTO, len(records))
	for i, c := range records {
		dtos[i] = CommitRecordDTO{
			ID:          c.ID,
			Path:        c.Path,
			Message:     c.Message,
			PreviousSHA: c.PreviousSHA,
			NewSHA:      c.NewSHA,
			Edits:       c.Edits,
			Deletions:   c.Deletions,
			Additions:   c.Additions,
			CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		}
	}
	return dtos
}

// SettingsDTO is the JSON representation of remembered settings.
type SettingsDTO struct {
	RepoOwner    string `json:"owner"`
	RepoName     string `json:"repo"`
	Branch       string `json:"branch"`
	GalleryPath  string `json:"galleryPath"`
	ImageDir     string `json:"imageDir"`
	MaxWidth     int    `json:"maxWidth"`
	JPEGQuality  int    `json:"jpegQuality"`
	AutoOptimize bool   `json:"autoOptimize"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

func toSettingsDTO(s domain.Settings) SettingsDTO {
	dto := SettingsDTO{
		RepoOwner:    s.RepoOwner,
		RepoName:     s.RepoName,
		Branch:       s.Branch,
		GalleryPath:  s.GalleryPath,
		ImageDir:     s.ImageDir,
		MaxWidth:     s.MaxWidth,
		JPEGQuality:  s.JPEGQuality,
		AutoOptimize: s.AutoOptimize,
	}
	if !s.UpdatedAt.IsZero() {
		dto.UpdatedAt = s.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// UploadedPhotoDTO is the JSON representation of one published upload.
type UploadedPhotoDTO struct {
	Photo         PhotoDTO    `json:"photo"`
	OriginalSize  int         `json:"originalSize"`
	PublishedSize int         `json:"publishedSize"`
	Camera        string      `json:"camera,omitempty"`
	TakenAt       string      `json:"takenAt,omitempty"`
	GPS           *[2]float64 `json:"gps,omitempty"`
}

func toUploadedPhotoDTOs(photos []service.PublishedPhoto) []UploadedPhotoDTO {
	dtos := make([]UploadedPhotoDTO, len(photos))
	for i, p := range photos {
		dtos[i] = UploadedPhotoDTO{
			Photo:         toPhotoDTO(p.Photo),
			OriginalSize:  p.OriginalSize,
			PublishedSize: p.PublishedSize,
		}
		applyMetadata(&dtos[i], p.Metadata)
	}
	return dtos
}

func applyMetadata(dto *UploadedPhotoDTO, m *photo.Metadata) {
	if m == nil {
		return
	}
	dto.Camera = m.Camera
	if !m.TakenAt.IsZero() {
		dto.TakenAt = m.TakenAt.Format(time.RFC3339)
	}
	if m.HasGPS {
		dto.GPS = &[2]float64{m.Lat, m.Lng}
	}
}

// RestaurantDTO is the JSON representation of a food guide entry.
type RestaurantDTO struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	DateVisited  string   `json:"dateVisited,omitempty"`
	Address      string   `json:"address,omitempty"`
	Dishes       string   `json:"dishes,omitempty"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	YelpRating   *float64 `json:"yelpRating"`
	GoogleRating *float64 `json:"googleRating"`
	Emoji        string   `json:"emoji"`
}

// CityDTO is the JSON representation of one city of the food guide.
type CityDTO struct {
	Name        string          `json:"name"`
	Restaurants []RestaurantDTO `json:"restaurants"`
}

func toCityDTOs(cities []domain.City) []CityDTO {
	dtos := make([]CityDTO, len(cities))
	for i, c := range cities {
		rs := make([]RestaurantDTO, len(c.Restaurants))
		for j, r := range c.Restaurants {
			rs[j] = RestaurantDTO{
				Name:         r.Name,
				Category:     r.Category,
				DateVisited:  r.DateVisited,
				Address:      r.Address,
				Dishes:       r.Dishes,
				Lat:          r.Lat,
				Lng:          r.Lng,
				YelpRating:   r.YelpRating,
				GoogleRating: r.GoogleRating,
				Emoji:        r.Emoji,
			}
		}
		dtos[i] = CityDTO{Name: c.Name, Restaurants: rs}
	}
	return dtos
}

// BookDTO is the JSON representation of a reading list entry.
type BookDTO struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Category   string   `json:"category"`
	Rating     *float64 `json:"rating"`
	Status     string   `json:"status"`
	Notes      string   `json:"notes,omitempty"`
	AmazonLink string   `json:"amazonLink,omitempty"`
	CoverURL   string   `json:"coverUrl,omitempty"`
	Emoji      string   `json:"emoji"`
}

func toBookDTOs(books []domain.Book) []BookDTO {
	dtos := make([]BookDTO, len(books))
	for i, b := range books {
		dtos[i] = BookDTO{
			Title:      b.Title,
			Author:     b.Author,
			Category:   b.Category,
			Rating:     b.Rating,
			Status:     b.Status,
			Notes:      b.Notes,
			AmazonLink: b.AmazonLink,
			CoverURL:   b.CoverURL(),
			Emoji:      b.Emoji,
		}
	}
	return dtos
}

// GearItemDTO is the JSON representation of a gear list entry.
type GearItemDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// GearSectionDTO is the JSON representation of one gear category.
type GearSectionDTO struct {
	Category string        `json:"category"`
	Items    []GearItemDTO `json:"items"`
}

func toGearDTOs(sections []domain.GearSection) []GearSectionDTO {
	dtos := make([]GearSectionDTO, len(sections))
	for i, s := range sections {
		items := make([]GearItemDTO, len(s.Items))
		for j, it := range s.Items {
			items[j] = GearItemDTO{Name: it.Name, Description: it.Description, URL: it.URL}
		}
		dtos[i] = GearSectionDTO{Category: s.Category, Items: items}
	}
	return dtos
}
