package tool

import (
	"github.com/cloudwego/eino/schema"
)

const (
	ToolSearchByArea      = "search_by_area"
	ToolSearchNearby      = "search_nearby"
	ToolMakeReservation   = "make_reservation"
	ToolCancelReservation = "cancel_reservation"
	ToolListBookings      = "list_bookings"
	ToolListOffers        = "list_offers"
	ToolSubmitFeedback    = "submit_feedback"
)

// Names lists the catalogue in the order it is offered to the model.
var Names = []string{
	ToolSearchByArea,
	ToolSearchNearby,
	ToolMakeReservation,
	ToolCancelReservation,
	ToolListBookings,
	ToolListOffers,
	ToolSubmitFeedback,
}

// Catalog describes every tool to the model. The caller's identity and
// location are never parameters; the executor supplies them.
func Catalog(rules Rules) []*schema.ToolInfo {
	bands := rules.PriceBandNames()

	return []*schema.ToolInfo{
		{
			Name: ToolSearchByArea,
			Desc: "Search for " + rules.Brand + " destinations in a specific Chennai neighbourhood. Use when the guest names an area such as 'Besant Nagar', 'Alwarpet', 'OMR' or 'Anna Nagar'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"area_name":   {Type: schema.String, Desc: "Area or neighbourhood name, e.g. 'Besant Nagar', 'Adyar', 'Velachery'.", Required: true},
				"min_rating":  {Type: schema.Number, Desc: "Minimum rating (1.0-5.0). Optional."},
				"has_parking": {Type: schema.Boolean, Desc: "Only destinations with parking. Optional."},
				"has_offers":  {Type: schema.Boolean, Desc: "Only destinations with active offers. Optional."},
			}),
		},
		{
			Name: ToolSearchNearby,
			Desc: "Search for " + rules.Brand + " destinations by distance from the guest. Use for 'nearby', 'closest' or 'around me' requests that do not name an area.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"max_distance_km": {Type: schema.Number, Desc: "Maximum distance from the guest in kilometres. Default 10."},
				"min_rating":      {Type: schema.Number, Desc: "Minimum rating (1.0-5.0). Optional."},
				"price_range":     {Type: schema.String, Desc: "Price range filter. Optional.", Enum: bands},
				"has_parking":     {Type: schema.Boolean, Desc: "Only destinations with parking. Optional."},
				"has_offers":      {Type: schema.Boolean, Desc: "Only destinations with active offers. Optional."},
			}),
		},
		{
			Name: ToolMakeReservation,
			Desc: "Create a restaurant reservation. Always confirm the details with the guest before calling this.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"restaurant_id":    {Type: schema.Integer, Desc: "ID of the restaurant to book.", Required: true},
				"reservation_date": {Type: schema.String, Desc: "Date in YYYY-MM-DD format. Must be today or a future date.", Required: true},
				"reservation_time": {Type: schema.String, Desc: "Time in 24-hour HH:MM format on a 30-minute boundary, e.g. 18:00, 18:30, 19:00.", Required: true},
				"party_size":       {Type: schema.Integer, Desc: "Number of people (1-20).", Required: true},
				"special_requests": {Type: schema.String, Desc: "Special requests such as 'window seat' or 'birthday celebration'. Optional."},
			}),
		},
		{
			Name: ToolCancelReservation,
			Desc: "Cancel one of the guest's reservations by ID.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reservation_id": {Type: schema.Integer, Desc: "ID of the reservation to cancel.", Required: true},
			}),
		},
		{
			Name: ToolListBookings,
			Desc: "List the guest's reservations.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"status": {
					Type: schema.String,
					Desc: "Filter by status. Defaults to 'confirmed' for upcoming bookings.",
					Enum: []string{"confirmed", "cancelled", "completed", "no_show", "all"},
				},
			}),
		},
		{
			Name: ToolListOffers,
			Desc: "Get the current offers and deals for a specific restaurant.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"restaurant_id": {Type: schema.Integer, Desc: "ID of the restaurant.", Required: true},
			}),
		},
		{
			Name: ToolSubmitFeedback,
			Desc: "Submit the guest's feedback and rating for a restaurant.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"restaurant_id":  {Type: schema.Integer, Desc: "ID of the restaurant.", Required: true},
				"rating":         {Type: schema.Integer, Desc: "Rating from 1 to 5 stars.", Required: true},
				"comment":        {Type: schema.String, Desc: "Feedback comment. Optional."},
				"reservation_id": {Type: schema.Integer, Desc: "Reservation the feedback refers to. Optional."},
			}),
		},
	}
}
