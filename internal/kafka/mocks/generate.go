package mocks

//go:generate mockgen -source=../consumer.go -destination=mock_reader.go -package=mocks
//go:generate mockgen -source=../publisher.go -destination=mock_producer.go -package=mocks
