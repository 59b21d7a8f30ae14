package handler

import (
	"tapbank/internal/pin"
)

type PinResponse struct {
	Status    string `json:"status"`
	CID       string `json:"cid"`
	PinSize   int64  `json:"pinSize"`
	Timestamp string `json:"timestamp,omitempty"`
	URL       string `json:"url"`
}

type PinnedItemResponse struct {
	ID         string `json:"id"`
	CID        string `json:"cid"`
	Size       int64  `json:"size"`
	DatePinned string `json:"datePinned"`
	Name       string `json:"name,omitempty"`
}

type PinnedListResponse struct {
	Count int                   `json:"count"`
	Rows  []*PinnedItemResponse `json:"rows"`
}

func toPinResponse(r *pin.Receipt) *PinResponse {
	return &PinResponse{
		Status:    "pinned",
		CID:       r.CID,
		PinSize:   r.PinSize,
		Timestamp: r.Timestamp,
		URL:       r.URL,
	}
}

func toPinnedListResponse(l *pin.List) *PinnedListResponse {
	rows := make([]*PinnedItemResponse, 0, len(l.Rows))
	for _, item := range l.Rows {
		rows = append(rows, &PinnedItemResponse{
			ID:         item.ID,
			CID:        item.CID,
			Size:       item.Size,
			DatePinned: item.DatePinned,
			Name:       item.Name,
		})
	}
	return &PinnedListResponse{Count: l.Count, Rows: rows}
}
