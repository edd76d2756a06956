package management

import (
	"consulting_leads_backend/internal/leads/dispatcher"
	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/internal/leads/scoring"
	"consulting_leads_backend/internal/leads/transport"
)

func toLeadResponse(lead domain.Lead, score int, tier scoring.Tier) transport.LeadResponse {
	return transport.LeadResponse{
		ID:        lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Inquiry:   lead.Inquiry,
		Source:    lead.Source,
		Status:    string(lead.Status),
		CreatedAt: lead.CreatedAt,
		Score:     score,
		Priority:  string(tier),
	}
}

func toActionResult(res dispatcher.Result) transport.ActionResultResponse {
	out := transport.ActionResultResponse{Success: res.Success, Message: res.Message}
	if res.Email != nil {
		out.EmailContent = &transport.EmailDraftResponse{
			Subject:        res.Email.Subject,
			HTMLBody:       res.Email.HTMLBody,
			RecipientEmail: res.Email.RecipientEmail,
			RecipientName:  res.Email.RecipientName,
			Generated:      res.Email.Generated,
		}
	}
	return out
}

func toScoreResponse(res scoring.Result) transport.ScoreResponse {
	insights := res.Insights
	if insights == nil {
		insights = []string{}
	}
	out := transport.ScoreResponse{
		Score:             res.Score,
		Priority:          string(res.Tier),
		Insights:          insights,
		RecommendedAction: res.RecommendedAction,
		Fallback:          res.Fallback,
	}
	for _, f := range res.Factors {
		out.Factors = append(out.Factors, transport.ScoreFactorResponse{Name: f.Name, Points: f.Points})
	}
	return out
}

func toActionRecord(r domain.ActionRecord) transport.ActionRecordResponse {
	return transport.ActionRecordResponse{
		ID:         r.ID,
		Action:     string(r.Action),
		Result:     string(r.Result),
		Detail:     r.Detail,
		ExecutedAt: r.ExecutedAt,
	}
}
