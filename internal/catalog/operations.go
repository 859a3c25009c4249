package catalog

import "fmt"

var useItemIDParam = Param{
	Name:        "use_item_id",
	Type:        TypeBoolean,
	Description: "Whether to treat item_name as an ID (true) or name (false). Default is false (names).",
	Default:     false,
}

func itemNameParam(desc string) Param {
	return Param{Name: "item_name", Type: TypeString, Description: desc, Required: true}
}

func stepDescriptionParam(desc string) Param {
	return Param{Name: "step_description", Type: TypeString, Description: desc, Required: true}
}

func quantityParam(desc string) Param {
	return Param{Name: "quantity", Type: TypeInteger, Description: desc, Required: true}
}

// Operations returns the full operation catalog in listing order.
func Operations() []Operation {
	return []Operation{
		{
			Name:        "call_java_method",
			MethodParam: "method_name",
			PathParam:   "pipe_path",
			Description: "Call a Java method via named pipe with arguments",
			Params: []Param{
				{Name: "method_name", Type: TypeString, Description: "Name of the Java method to call", Required: true, Local: true},
				{Name: "args", Type: TypeArray, Description: "Arguments to pass to the method", Spread: true},
				{Name: "pipe_path", Type: TypeString, Description: "Custom named pipe path (optional)", Local: true},
			},
			Summarize: func(args Args, result any) string {
				if result == nil {
					result = "Method executed successfully"
				}

				return fmt.Sprintf("Java method '%s' result: %s", args.String("method_name"), formatResult(result))
			},
			Failure: func(args Args, msg string) string {
				return fmt.Sprintf("Failed to call Java method '%s': %s", args.String("method_name"), msg)
			},
		},
		{
			Name:        "greet_user",
			Method:      "greet",
			Description: "Greet a user via the Java shim",
			Params: []Param{
				{Name: "name", Type: TypeString, Description: "Name of the person to greet", Required: true},
			},
			Summarize: reported("Greeting result: ", text("Greeting completed")),
			Failure:   failedTo("greet user"),
		},
		{
			Name:        "calculate",
			Method:      "calculate",
			Description: "Perform a calculation via the Java shim",
			Params: []Param{
				{Name: "a", Type: TypeNumber, Description: "First number", Required: true},
				{Name: "b", Type: TypeNumber, Description: "Second number", Required: true},
				{
					Name:        "operation",
					Type:        TypeString,
					Description: "Operation to perform",
					Required:    true,
					Enum:        []string{"add", "subtract", "multiply", "divide"},
				},
			},
			Summarize: reported("Calculation result: ", func(args Args) string {
				return argText(args, "a", nil) + " " + args.String("operation") + " " + argText(args, "b", nil)
			}),
			Failure: failedTo("calculate"),
		},
		{
			Name:         "walk_to_location",
			Method:       "walkToLocation",
			Description:  "Command the bot to walk to specific coordinates (x, y, z)",
			RequiredText: "x and y coordinates are required",
			Params: []Param{
				{Name: "x", Type: TypeInteger, Description: "X coordinate", Required: true},
				{Name: "y", Type: TypeInteger, Description: "Y coordinate", Required: true},
				{Name: "z", Type: TypeInteger, Description: "Z coordinate (plane/level), optional, defaults to 0", Default: 0},
			},
			Summarize: reported("Walk result: ", func(args Args) string {
				return fmt.Sprintf("Walking to (%s, %s, %s)", argText(args, "x", nil), argText(args, "y", nil), argText(args, "z", 0))
			}),
			Failure: failedTo("walk"),
		},
		{
			Name:        "click_object",
			Method:      "clickObject",
			Description: "Command the bot to click on an object",
			Params: []Param{
				{Name: "object_name", Type: TypeString, Description: "Name of the object to click", Required: true},
			},
			Summarize: reported("Click result: ", func(args Args) string { return "Clicked " + args.String("object_name") }),
			Failure:   failedTo("click object"),
		},
		{
			Name:        "get_inventory_count",
			Method:      "getInventoryCount",
			Description: "Get the current inventory count from the bot and return the actual count",
			Summarize:   inventoryCount,
			Failure:     failedTo("get inventory count"),
		},
		{
			Name:   "check_inventory_for_item",
			Method: "checkInventoryForItem",
			Description: "Check if inventory contains a specific item and return count. " +
				"Returns -1 if item not found, 0+ for actual count",
			Params:    []Param{itemNameParam("Name or ID of the item to check for"), useItemIDParam},
			Summarize: inventoryItemCount,
			Failure:   failedTo("check inventory for item"),
		},
		{
			Name:   "inventory_contains_item",
			Method: "inventoryContainsItem",
			Description: "Check if inventory contains a specific item (boolean result). " +
				"Simple true/false check without count",
			Params:    []Param{itemNameParam("Name or ID of the item to check for"), useItemIDParam},
			Summarize: inventoryContains,
			Failure:   failedTo("check if inventory contains item"),
		},
		{
			Name:        "check_bank_open",
			Method:      "bankIsOpen",
			Description: "Check if the bank is currently open and return true/false status",
			Summarize:   bankStatus,
			Failure:     failedTo("check bank status"),
		},
		{
			Name:        "close_bank",
			Method:      "closeBank",
			Description: "Close the bank if it is currently open",
			Summarize:   reported("Close bank result: ", text("Bank close attempted")),
			Failure:     failedTo("close bank"),
		},
		{
			Name:        "withdraw_item",
			Method:      "withdrawItem",
			Description: "Withdraw a specific item from the bank with quantity",
			Params: []Param{
				itemNameParam("Name of the item to withdraw"),
				quantityParam("Quantity to withdraw (use -1 for all)"),
			},
			Summarize: reported("Withdraw item result: ", func(args Args) string {
				return fmt.Sprintf("Withdraw %s %s attempted", argText(args, "quantity", nil), args.String("item_name"))
			}),
			Failure: failedTo("withdraw item"),
		},
		{
			Name:        "deposit_item",
			Method:      "depositItem",
			Description: "Deposit a specific item to the bank with quantity",
			Params: []Param{
				itemNameParam("Name of the item to deposit"),
				quantityParam("Quantity to deposit (use -1 for all)"),
			},
			Summarize: reported("Deposit item result: ", func(args Args) string {
				return fmt.Sprintf("Deposit %s %s attempted", argText(args, "quantity", nil), args.String("item_name"))
			}),
			Failure: failedTo("deposit item"),
		},
		{
			Name:        "deposit_all",
			Method:      "depositAllExcept",
			Description: "Deposit all items from inventory to the bank",
			Summarize:   reported("Deposit all result: ", text("Deposit all attempted")),
			Failure:     failedTo("deposit all"),
		},
		{
			Name:        "run_dreambot_action",
			Method:      "runDreambotAction",
			Description: "Run a DreamBot action with parameters",
			Params: []Param{
				{Name: "action", Type: TypeString, Description: "The action to perform", Required: true},
				{Name: "params", Type: TypeArray, Items: TypeString, Description: "Parameters for the action", Spread: true},
			},
			Summarize: reported("DreamBot action result: ", func(args Args) string {
				return fmt.Sprintf("Action '%s' executed", args.String("action"))
			}),
			Failure: failedTo("execute DreamBot action"),
		},
		{
			Name:        "log_message",
			Method:      "logMessage",
			Description: "Log a message with specified level",
			Params: []Param{
				{
					Name:        "level",
					Type:        TypeString,
					Description: "Log level",
					Required:    true,
					Enum:        []string{"INFO", "DEBUG", "ERROR", "WARN"},
				},
				{Name: "message", Type: TypeString, Description: "Message to log", Required: true},
			},
			Summarize: reported("Log message result: ", func(args Args) string {
				return fmt.Sprintf("[%s] %s", args.String("level"), args.String("message"))
			}),
			Failure: failedTo("log message"),
		},
		{
			Name:        "clear_upcoming_steps",
			Method:      "clearUpcomingSteps",
			Description: "Clear all upcoming steps from the task list",
			Summarize:   reported("Cleared upcoming steps: ", text("Steps cleared")),
			Failure:     failedTo("clear upcoming steps"),
		},
		{
			Name:        "add_upcoming_step",
			Method:      "addUpcomingStep",
			Description: "Add a new step to the upcoming task list",
			Params:      []Param{stepDescriptionParam("Description of the step to add")},
			Summarize: reported("Step added: ", func(args Args) string {
				return "Added: " + args.String("step_description")
			}),
			Failure: failedTo("add step"),
		},
		{
			Name:        "get_upcoming_steps_count",
			Method:      "getUpcomingStepsCount",
			Description: "Get the actual number of upcoming steps in the task list",
			Summarize:   reported("Upcoming steps count: ", text("0")),
			Failure:     failedTo("get steps count"),
		},
		{
			Name:        "peek_next_step",
			Method:      "peekNextStep",
			Description: "Preview the next step without removing it from the list and return step details",
			Summarize:   reported("Next step: ", text("No upcoming steps")),
			Failure:     failedTo("peek next step"),
		},
		{
			Name:        "get_next_step",
			Method:      "getNextStep",
			Description: "Get and remove the next step from the task list, returning the step description",
			Summarize:   reported("Retrieved next step: ", text("No steps available")),
			Failure:     failedTo("get next step"),
		},
		{
			Name:        "set_current_step",
			Method:      "setCurrentStep",
			Description: "Set the current step being executed",
			Params:      []Param{stepDescriptionParam("Description of the current step")},
			Summarize: reported("Set current step: ", func(args Args) string {
				return "Current step: " + args.String("step_description")
			}),
			Failure: failedTo("set current step"),
		},
		{
			Name:        "remove_upcoming_step",
			Method:      "removeUpcomingStep",
			Description: "Remove a specific step from the upcoming task list by index",
			Params: []Param{
				{Name: "index", Type: TypeInteger, Description: "Index of the step to remove (0-based)", Required: true},
			},
			Summarize: reported("Remove step result: ", func(args Args) string {
				return "Removed step at index " + argText(args, "index", nil)
			}),
			Failure: failedTo("remove step"),
		},
		{
			Name:        "insert_upcoming_step",
			Method:      "insertUpcomingStep",
			Description: "Insert a step at a specific position in the upcoming task list",
			Params: []Param{
				{Name: "index", Type: TypeInteger, Description: "Index where to insert the step (0-based)", Required: true},
				stepDescriptionParam("Description of the step to insert"),
			},
			Summarize: reported("Insert step result: ", func(args Args) string {
				return fmt.Sprintf("Inserted '%s' at index %s", args.String("step_description"), argText(args, "index", nil))
			}),
			Failure: failedTo("insert step"),
		},
		{
			Name:   "handle_npc_dialogue",
			Method: "handleNPCDialogue",
			Description: "Handle NPC dialogue interactions, waiting for all dialogue to complete. " +
				"Uses the Tutorial Island dialogue handling pattern.",
			Params: []Param{
				{
					Name:        "npc_name",
					Type:        TypeString,
					Description: "Name of the NPC to interact with (optional, can be empty for any dialogue)",
					Default:     "",
				},
				{
					Name:        "max_wait_time",
					Type:        TypeInteger,
					Description: "Maximum time to wait for dialogue completion in seconds (default: 120)",
					Default:     120,
				},
			},
			Summarize: reported("NPC dialogue result: ", func(args Args) string {
				npc := args.String("npc_name")
				if npc == "" {
					npc = "NPC"
				}

				return "Successfully handled dialogue with " + npc
			}),
			Failure: failedTo("handle NPC dialogue"),
		},
		{
			Name:        "use_item_on_item",
			Method:      "useItemOnItem",
			Description: "Use one item on another item in the inventory (combine items)",
			Params: []Param{
				{Name: "primary_item", Type: TypeString, Description: "Name or ID of the primary item to use", Required: true},
				{
					Name:        "secondary_item",
					Type:        TypeString,
					Description: "Name or ID of the secondary item to use the primary item on",
					Required:    true,
				},
				{
					Name:        "use_item_ids",
					Type:        TypeBoolean,
					Description: "Whether to treat the item parameters as IDs (true) or names (false). Default is false (names).",
					Default:     false,
				},
			},
			Summarize: reported("Use item on item result: ", func(args Args) string {
				return fmt.Sprintf("Used %s on %s", args.String("primary_item"), args.String("secondary_item"))
			}),
			Failure: failedTo("use item on item"),
		},
		{
			Name:   "perform_item_action",
			Method: "performItemAction",
			Description: "Perform a custom action on an item, or use an item on a game object. " +
				"Examples: 'Eat' on 'Lobster', use 'Bread' on 'Oven', 'Drop' an item, etc.",
			Params: []Param{
				{
					Name:        "action",
					Type:        TypeString,
					Description: "The action to perform (e.g., 'Eat', 'Use', 'Drop', 'Drink', 'Wield', etc.)",
					Required:    true,
				},
				{Name: "item", Type: TypeString, Description: "Name or ID of the item to perform the action on", Required: true},
				{
					Name: "target",
					Type: TypeString,
					Description: "Optional target for the action. Can be another item name (for inventory actions) " +
						"or game object name (for world interactions)",
				},
				{
					Name:        "use_item_ids",
					Type:        TypeBoolean,
					Description: "Whether to treat the item parameter as an ID (true) or name (false). Default is false (names).",
					Default:     false,
				},
				{
					Name: "target_type",
					Type: TypeString,
					Description: "Type of target: 'item' for inventory items, 'object' for game objects. " +
						"Default is 'object' if target is provided.",
					Enum:    []string{"item", "object"},
					Default: "object",
				},
			},
			Summarize: reported("Item action result: ", func(args Args) string {
				return fmt.Sprintf("Performed %s on %s", args.String("action"), args.String("item"))
			}),
			Failure: failedTo("perform item action"),
		},
		{
			Name:        "pickup_ground_item",
			Method:      "pickupGroundItem",
			Description: "Pick up a ground item by name",
			Params:      []Param{itemNameParam("Name of the ground item to pick up")},
			Summarize: reported("Pickup ground item result: ", func(args Args) string {
				return "Attempted to pick up ground item: " + args.String("item_name")
			}),
			Failure: failedTo("pick up ground item"),
		},
		{
			Name:        "pickup_ground_item_by_id",
			Method:      "pickupGroundItemById",
			Description: "Pick up a ground item by ID",
			Params: []Param{
				{Name: "item_id", Type: TypeInteger, Description: "ID of the ground item to pick up", Required: true},
			},
			Summarize: reported("Pickup ground item by ID result: ", func(args Args) string {
				return "Attempted to pick up ground item ID: " + argText(args, "item_id", nil)
			}),
			Failure: failedTo("pick up ground item by ID"),
		},
		{
			Name:        "get_nearby_ground_items",
			Method:      "getNearbyGroundItems",
			Description: "Get information about nearby ground items",
			Summarize:   reported("Nearby ground items: ", text("No ground items information available")),
			Failure:     failedTo("get nearby ground items"),
		},
		{
			Name:        "ground_item_exists",
			Method:      "groundItemExists",
			Description: "Check if a specific ground item exists nearby",
			Params:      []Param{itemNameParam("Name of the ground item to check for")},
			Summarize:   groundItemExists,
			Failure:     failedTo("check if ground item exists"),
		},
		{
			Name:        "get_distance_to_ground_item",
			Method:      "getDistanceToGroundItem",
			Description: "Get the distance to the closest ground item by name",
			Params:      []Param{itemNameParam("Name of the ground item to get distance to")},
			Summarize:   groundItemDistance,
			Failure:     failedTo("get distance to ground item"),
		},
		{
			Name:        "get_current_tile",
			Method:      "getCurrentTile",
			Description: "Get the player's current tile coordinates (x, y, z)",
			Summarize:   reported("Current tile: ", text("Current tile unknown")),
			Failure:     failedTo("get current tile"),
		},
	}
}
