package services

import "strings"

// SystemPrompt steers the model towards one of the order tools.
const SystemPrompt = `You are a drive-thru ordering assistant. Your job is to:

1. PLACE ORDERS: Parse requests for burgers, fries, and drinks with specific quantities
2. MODIFY ORDERS: Change the quantities of an existing order by order number
3. CANCEL ORDERS: Process cancellation requests with order numbers

Key rules:
- If no quantity is specified, assume 1
- Extract ALL mentioned items and quantities
- Look for phrases like "each", "both", "all of us" to multiply quantities
- Order numbers can be mentioned as "order 5", "#5", "order number 5", etc.
- For modifications use set_<item> to replace a quantity, add_<item> to add and remove_<item> to remove; remove_<item>=999 removes all of that item
- Only respond with the specified function calls

Examples:
- "I want 2 burgers and 3 fries" → place_order(burgers=2, fries=3, drinks=0)
- "My friend and I each want a drink" → place_order(burgers=0, fries=0, drinks=2)
- "Add two drinks to order 4" → modify_order(order_id=4, add_drinks=2)
- "No fries on order 2" → modify_order(order_id=2, remove_fries=999)
- "Cancel order 5" → cancel_order(order_id=5)
- "Please cancel my order #3" → cancel_order(order_id=3)`

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type FunctionDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

// FunctionDefinitions describes the three order tools offered to the model.
func FunctionDefinitions() []FunctionDefinition {
	modify := map[string]Property{
		"order_id": {Type: "integer", Description: "The order number to modify"},
	}
	for _, item := range []string{"burgers", "fries", "drinks"} {
		modify["set_"+item] = Property{Type: "integer", Description: "Replace the number of " + item}
		modify["add_"+item] = Property{Type: "integer", Description: "Number of " + item + " to add"}
		modify["remove_"+item] = Property{Type: "integer", Description: "Number of " + item + " to remove, 999 for all"}
	}

	return []FunctionDefinition{
		{
			Name:        "place_order",
			Description: "Place a food order with specified quantities",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"burgers": {Type: "integer", Description: "Number of burgers"},
					"fries":   {Type: "integer", Description: "Number of fries"},
					"drinks":  {Type: "integer", Description: "Number of drinks"},
				},
			},
		},
		{
			Name:        "modify_order",
			Description: "Change the items of an existing order by order number",
			Parameters: Schema{
				Type:       "object",
				Properties: modify,
				Required:   []string{"order_id"},
			},
		},
		{
			Name:        "cancel_order",
			Description: "Cancel an existing order by order number",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"order_id": {Type: "integer", Description: "The order number to cancel"},
				},
				Required: []string{"order_id"},
			},
		},
	}
}

// geminiSchema converts a tool schema to the upper-case type names Gemini expects.
func geminiSchema(s Schema) Schema {
	props := make(map[string]Property, len(s.Properties))
	for name, p := range s.Properties {
		props[name] = Property{Type: strings.ToUpper(p.Type), Description: p.Description}
	}
	return Schema{Type: strings.ToUpper(s.Type), Properties: props, Required: s.Required}
}
