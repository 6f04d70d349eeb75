//go:generate mockgen -source=../publisher.go       -destination=./mock_publisher.go       -package=mocks
//go:generate mockgen -source=../message_handler.go -destination=./mock_message_handler.go -package=mocks

package mocks
