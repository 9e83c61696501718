package models

import (
	"strings"
	"time"
)

// Category is the kind of civic issue a complaint describes.
type Category string

const (
	CategoryPothole     Category = "pothole"
	CategoryGarbage     Category = "garbage"
	CategoryWaterLeak   Category = "water_leak"
	CategoryStreetLight Category = "street_light"
	CategoryOther       Category = "other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{CategoryPothole, CategoryGarbage, CategoryWaterLeak, CategoryStreetLight, CategoryOther}

// ParseCategory normalises free text ("Water Leak", "street-light") into a Category.
func ParseCategory(s string) (Category, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, c := range Categories {
		if string(c) == norm {
			return c, true
		}
	}
	return "", false
}

// Priority is the urgency assigned to a complaint.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func ParsePriority(s string) (Priority, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, p := range Priorities {
		if string(p) == norm {
			return p, true
		}
	}
	return "", false
}

// Status is the resolution state of a complaint.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved}

// ParseStatus accepts "in-progress", "in_progress" and "in progress" alike.
func ParseStatus(s string) (Status, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	for _, st := range Statuses {
		if string(st) == norm {
			return st, true
		}
	}
	return "", false
}

func (s Status) rank() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// CanAdvanceTo reports whether next is the same status or the immediate
// successor of s in the pending -> in-progress -> resolved workflow.
func (s Status) CanAdvanceTo(next Status) bool {
	from, to := s.rank(), next.rank()
	if from < 0 || to < 0 {
		return false
	}
	return to == from || to == from+1
}

// Comment is a note attached to a complaint.
type Comment struct {
	UserID    string    `json:"userId" firestore:"userId" bson:"userId"`
	Text      string    `json:"text" firestore:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}

// Complaint is a citizen-submitted civic issue report.
type Complaint struct {
	ID                  string    `json:"id" firestore:"-" bson:"_id"`
	Title               string    `json:"title" firestore:"title" bson:"title"`
	Description         string    `json:"description" firestore:"description" bson:"description"`
	EnhancedTitle       string    `json:"enhancedTitle,omitempty" firestore:"enhancedTitle,omitempty" bson:"enhancedTitle,omitempty"`
	EnhancedDescription string    `json:"enhancedDescription,omitempty" firestore:"enhancedDescription,omitempty" bson:"enhancedDescription,omitempty"`
	Category            Category  `json:"category" firestore:"category" bson:"category"`
	Priority            Priority  `json:"priority" firestore:"priority" bson:"priority"`
	Status              Status    `json:"status" firestore:"status" bson:"status"`
	Location            Location  `json:"location" firestore:"location" bson:"location"`
	UserID              string    `json:"userId" firestore:"userId" bson:"userId"`
	Images              []string  `json:"images" firestore:"images" bson:"images"`
	Comments            []Comment `json:"comments" firestore:"comments" bson:"comments"`
	IsPublic            bool      `json:"isPublic" firestore:"isPublic" bson:"isPublic"`
	CreatedAt           time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

// Clone returns a copy that shares no slices with c.
func (c *Complaint) Clone() *Complaint {
	if c == nil {
		return nil
	}
	out := *c
	out.Images = append([]string(nil), c.Images...)
	out.Comments = append([]Comment(nil), c.Comments...)
	return &out
}

// ComplaintWithUser is a complaint joined with its owner's projection.
type ComplaintWithUser struct {
	*Complaint
	User *UserSummary `json:"user,omitempty"`
}

// ComplaintPatch holds the fields of a partial update. Nil fields are left untouched.
type ComplaintPatch struct {
	Title               *string
	Description         *string
	EnhancedTitle       *string
	EnhancedDescription *string
	Category            *Category
	Priority            *Priority
	Status              *Status
	Location            *Location
	Images              *[]string
	IsPublic            *bool
	UpdatedAt           time.Time
}

// Apply writes the non-nil fields of p onto c and stamps UpdatedAt.
func (p ComplaintPatch) Apply(c *Complaint) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.EnhancedTitle != nil {
		c.EnhancedTitle = *p.EnhancedTitle
	}
	if p.EnhancedDescription != nil {
		c.EnhancedDescription = *p.EnhancedDescription
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.Images != nil {
		c.Images = append([]string(nil), (*p.Images)...)
	}
	if p.IsPublic != nil {
		c.IsPublic = *p.IsPublic
	}
	c.UpdatedAt = p.UpdatedAt
}

// ComplaintStats backs the admin dashboard counters.
type ComplaintStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Critical   int `json:"critical"`
}

// Add counts one complaint with the given status and priority.
func (s *ComplaintStats) Add(status Status, priority Priority) {
	s.Total++
	switch status {
	case StatusPending:
		s.Pending++
	case StatusInProgress:
		s.InProgress++
	case StatusResolved:
		s.Resolved++
	}
	if priority == PriorityCritical {
		s.Critical++
	}
}
