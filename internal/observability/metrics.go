package observability

const (
	MUsecaseRequests     MetricKey = "usecase_requests_total"
	MUsecaseDuration     MetricKey = "usecase_duration_seconds"
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"
	MBasketLinesWritten  MetricKey = "basket_lines_written_total"
	MOrderEventPublishes MetricKey = "order_event_publish_total"
)
