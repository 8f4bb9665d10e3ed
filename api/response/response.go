// Package response holds the JSON bodies written by the HTTP layer.
package response

// DataResponse оборачивает успешный ответ
type DataResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse описывает ошибку
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Kind       string   `json:"kind"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Success    bool     `json:"success"`
}
