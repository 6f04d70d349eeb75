package domain

import "errors"

// Базовые ошибки (sentinel errors). Адаптеры оборачивают их через %w,
// верхние слои классифицируют через errors.Is.
var (
	// ErrConfiguration — не задана обязательная настройка (URL очереди, топик, брокеры).
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation — некорректный запрос клиента (пустой id).
	ErrValidation = errors.New("validation error")

	// ErrBrokerUnavailable — брокер не принял сообщение (сеть, авторизация, отказ брокера).
	ErrBrokerUnavailable = errors.New("broker unavailable")

	// ErrMalformedPayload — тело сообщения не разбирается как конверт.
	ErrMalformedPayload = errors.New("malformed payload")
)
