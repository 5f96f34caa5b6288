package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Pricing API taxonomy. Each code has its own recovery path on the
	// operator side, so the distinction must survive all the way to the
	// HTTP response.
	DatasetTooLarge failure.ErrorCode = "DatasetTooLarge" // retried once with the suggested limit before surfacing
	RequestTimeout  failure.ErrorCode = "RequestTimeout"  // transient, retry is operator-initiated
	RecentlyUpdated failure.ErrorCode = "RecentlyUpdated" // upstream message shown verbatim
	RateLimited     failure.ErrorCode = "RateLimited"
	AccessDenied    failure.ErrorCode = "AccessDenied" // credentials problem, not transient
	MarginTooLow    failure.ErrorCode = "MarginTooLow" // guarded decision point, not a failure

	FeedCheckFailed    failure.ErrorCode = "FeedCheckFailed"
	ListingNotFound    failure.ErrorCode = "ListingNotFound"
	InvalidTargetPrice failure.ErrorCode = "InvalidTargetPrice"
	UpdateInFlight     failure.ErrorCode = "UpdateInFlight"
)
