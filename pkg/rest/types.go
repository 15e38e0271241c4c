// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

type Deal struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	URL         string  `json:"url"`
	FetchedAt   string  `json:"fetchedAt"`
}

type Opportunity struct {
	Deal     Deal    `json:"deal"`
	Estimate float64 `json:"estimate"`
	Discount float64 `json:"discount"`
	Degraded bool    `json:"degraded"`
	AddedAt  string  `json:"addedAt"`
}

type CycleResult struct {
	Outcome       string        `json:"outcome"`
	Opportunities []Opportunity `json:"opportunities"`
	Attempted     int           `json:"attempted"`
	Skipped       int           `json:"skipped"`
	Failed        int           `json:"failed"`
	Warnings      []string      `json:"warnings,omitempty"`
	NextResetAt   *string       `json:"nextResetAt,omitempty"`
}

type Quota struct {
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	ResetsAt  string `json:"resetsAt"`
}

type Opportunities struct {
	Items []Opportunity `json:"items"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
