package order

const EventOrderCreated = "order.created"

type OrderCreatedEvent struct {
	OrderID        string
	UserID         string
	Lines          []Line
	TotalCostCents int64
}

func (OrderCreatedEvent) EventName() string { return EventOrderCreated }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:        o.ID,
		UserID:         o.UserID,
		Lines:          append([]Line(nil), o.Lines...),
		TotalCostCents: o.TotalCostCents,
	}
}
