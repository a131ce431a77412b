// Package testing provides shared mocks and fixtures for unit tests.
//
// This package centralizes common testing patterns to avoid duplication
// across test files:
//   - MockComputeAPI / MockIdentityAPI: testify mocks for the platform
//     client interfaces
//   - MockRosterSource: canned course rosters
//   - Fixtures for students, instances, and policy versions
//
// Usage:
//
//	api := new(testing.MockComputeAPI)
//	api.On("LaunchInstance", mock.Anything, mock.Anything).Return("i-1", nil)
package testing
