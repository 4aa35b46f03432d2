// Package mocks provides gomock implementations of the ports in internal/core.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	broker := mocks.NewMockJobBroker(ctrl)
//	broker.EXPECT().Complete(gomock.Any(), "job-1", gomock.Any()).Return(nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=queue_inspector_mock.go github.com/door43/catalog-job-handler/internal/core QueueInspector
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_broker_mock.go github.com/door43/catalog-job-handler/internal/core JobBroker
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=archive_fetcher_mock.go github.com/door43/catalog-job-handler/internal/core ArchiveFetcher
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=releaser_mock.go github.com/door43/catalog-job-handler/internal/core Releaser
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_handler_mock.go github.com/door43/catalog-job-handler/internal/core JobHandler
