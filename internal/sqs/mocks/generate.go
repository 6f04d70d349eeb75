package mocks

//go:generate mockgen -source=../client.go -destination=mock_api.go -package=mocks
