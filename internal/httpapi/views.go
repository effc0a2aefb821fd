package httpapi

import (
	"github.com/arueda/gestion/internal/calculator"
	"github.com/arueda/gestion/internal/models"
)

// View types decouple the wire format from the domain models; password hashes
// and other internal fields never reach the client.

type userView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

func toUserView(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, CreatedAt: u.CreatedAt}
}

type planView struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	OwnerID      string   `json:"owner_id"`
	MemberIDs    []string `json:"member_ids"`
	Distribution string   `json:"distribution"`
	CreatedAt    int64    `json:"created_at"`
}

func toPlanView(p *models.Plan) planView {
	return planView{
		ID:           p.ID,
		Title:        p.Title,
		OwnerID:      p.OwnerID,
		MemberIDs:    p.MemberIDs,
		Distribution: p.Distribution,
		CreatedAt:    p.CreatedAt,
	}
}

func toPlanViews(plans []*models.Plan) []planView {
	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		views = append(views, toPlanView(p))
	}
	return views
}

type personView struct {
	ID          string `json:"id"`
	PlanID      string `json:"plan_id"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name"`
	IsOwner     bool   `json:"is_owner"`
}

func toPersonView(p *models.Person) personView {
	return personView{ID: p.ID, PlanID: p.PlanID, UserID: p.UserID, DisplayName: p.DisplayName, IsOwner: p.IsOwner}
}

func toPersonViews(persons []*models.Person) []personView {
	views := make([]personView, 0, len(persons))
	for _, p := range persons {
		views = append(views, toPersonView(p))
	}
	return views
}

type recordView struct {
	ID          string  `json:"id"`
	PlanID      string  `json:"plan_id"`
	PayerID     string  `json:"payer_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        int64   `json:"date"`
	CreatedBy   string  `json:"created_by"`
	Settlement  bool    `json:"settlement"`
	ReceiverID  string  `json:"receiver_id,omitempty"`
	CreatedAt   int64   `json:"created_at"`
}

func toRecordView(r *models.ContributionRecord) recordView {
	return recordView{
		ID:          r.ID,
		PlanID:      r.PlanID,
		PayerID:     r.PayerID,
		Amount:      r.Amount,
		Description: r.Description,
		Date:        r.Date,
		CreatedBy:   r.CreatedBy,
		Settlement:  r.Settlement,
		ReceiverID:  r.ReceiverID,
		CreatedAt:   r.CreatedAt,
	}
}

func toRecordViews(records []*models.ContributionRecord) []recordView {
	views := make([]recordView, 0, len(records))
	for _, r := range records {
		views = append(views, toRecordView(r))
	}
	return views
}

type balanceView struct {
	PersonID    string  `json:"person_id"`
	DisplayName string  `json:"display_name"`
	Actual      float64 `json:"actual"`
	Adjustment  float64 `json:"adjustment"`
	Effective   float64 `json:"effective"`
	Balance     float64 `json:"balance"`
}

func toBalanceViews(balances []calculator.Balance) []balanceView {
	views := make([]balanceView, 0, len(balances))
	for _, b := range balances {
		views = append(views, balanceView{
			PersonID:    b.PersonID,
			DisplayName: b.DisplayName,
			Actual:      b.Actual,
			Adjustment:  b.Adjustment,
			Effective:   b.Effective,
			Balance:     b.Balance,
		})
	}
	return views
}

type paymentView struct {
	FromID   string  `json:"from_id"`
	FromName string  `json:"from_name"`
	ToID     string  `json:"to_id"`
	ToName   string  `json:"to_name"`
	Amount   float64 `json:"amount"`
}

func toPaymentViews(payments []calculator.Payment) []paymentView {
	views := make([]paymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, paymentView{
			FromID:   p.FromID,
			FromName: p.FromName,
			ToID:     p.ToID,
			ToName:   p.ToName,
			Amount:   p.Amount,
		})
	}
	return views
}

type pendingView struct {
	ID          string  `json:"id"`
	PlanID      string  `json:"plan_id"`
	PersonID    string  `json:"person_id"`
	UserID      string  `json:"user_id,omitempty"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Pending     bool    `json:"pending"`
	CreatedAt   int64   `json:"created_at"`
}

func toPendingView(p *models.PendingTransaction) pendingView {
	return pendingView{
		ID:          p.ID,
		PlanID:      p.PlanID,
		PersonID:    p.PersonID,
		UserID:      p.UserID,
		Amount:      p.Amount,
		Description: p.Description,
		Pending:     p.Pending,
		CreatedAt:   p.CreatedAt,
	}
}

func toPendingViews(pendings []*models.PendingTransaction) []pendingView {
	views := make([]pendingView, 0, len(pendings))
	for _, p := range pendings {
		views = append(views, toPendingView(p))
	}
	return views
}
