package validate

// Request schemas for every validated endpoint. Create schemas mark
// their mandatory fields Required; update schemas leave everything
// optional and mark clearable columns Nullable so partial updates can
// distinguish "leave alone" from "set to null".

var EventCreate = Schema{
	{Name: "title", Required: true, Rule: String(1, 200)},
	{Name: "type", Required: true, Rule: Enum("harvest", "planting", "community")},
	{Name: "description", Required: true, Rule: String(1, 2000)},
	{Name: "gardenId", Required: true, Rule: ID()},
	{Name: "date", Required: true, Rule: DateTime()},
	{Name: "startTime", Required: true, Rule: TimeOfDay()},
	{Name: "endTime", Required: true, Rule: TimeOfDay()},
	{Name: "location", Rule: String(0, 500)},
	{Name: "maxParticipants", Rule: PositiveInt()},
}

var EventUpdate = Schema{
	{Name: "title", Rule: String(1, 200)},
	{Name: "type", Rule: Enum("harvest", "planting", "community")},
	{Name: "description", Rule: String(1, 2000)},
	{Name: "date", Rule: DateTime()},
	{Name: "startTime", Rule: TimeOfDay()},
	{Name: "endTime", Rule: TimeOfDay()},
	{Name: "location", Nullable: true, Rule: String(0, 500)},
	{Name: "maxParticipants", Nullable: true, Rule: PositiveInt()},
}

var TaskCreate = Schema{
	{Name: "gardenId", Required: true, Rule: ID()},
	{Name: "assignedTo", Required: true, Rule: ID()},
	{Name: "title", Required: true, Rule: String(1, 200)},
	{Name: "description", Required: true, Rule: String(1, 2000)},
	{Name: "dueDate", Rule: DateTime()},
	{Name: "status", Rule: Enum("pending", "in-progress", "completed")},
}

var TaskUpdate = Schema{
	{Name: "title", Rule: String(1, 200)},
	{Name: "description", Rule: String(1, 2000)},
	{Name: "dueDate", Nullable: true, Rule: DateTime()},
	{Name: "status", Rule: Enum("pending", "in-progress", "completed")},
}

var NotificationCreate = Schema{
	{Name: "userId", Required: true, Rule: ID()},
	{Name: "title", Required: true, Rule: String(1, 200)},
	{Name: "message", Required: true, Rule: String(1, 1000)},
	{Name: "type", Required: true, Rule: Enum("event", "message", "request", "system", "invitation", "task")},
}

var MessageCreate = Schema{
	{Name: "toUserId", Required: true, Rule: ID()},
	{Name: "subject", Required: true, Rule: String(1, 200)},
	{Name: "content", Required: true, Rule: String(1, 5000)},
	{Name: "requestType", Rule: String(0, 100)},
}

var InvitationCreate = Schema{
	{Name: "gardenId", Required: true, Rule: ID()},
	{Name: "userId", Required: true, Rule: ID()},
	{Name: "role", Required: true, Rule: Enum("Gardener", "Volunteer")},
}

var GardenerRequestCreate = Schema{
	{Name: "title", Required: true, Rule: String(1, 200)},
	{Name: "description", Required: true, Rule: String(1, 2000)},
	{Name: "requestType", Required: true, Rule: Enum("supplies", "seedlings", "food-utility", "volunteer-help")},
	{Name: "status", Rule: Enum("pending", "approved", "rejected", "completed")},
	{Name: "supplyIds", Rule: IDList()},
	{Name: "seedlingIds", Rule: IDList()},
	{Name: "season", Rule: Enum("spring", "fall", "both")},
	{Name: "quantity", Rule: PositiveInt()},
	{Name: "assistanceType", Rule: String(0, 100)},
	{Name: "householdSize", Rule: PositiveInt()},
	{Name: "task", Rule: String(0, 500)},
	{Name: "notes", Rule: String(0, 2000)},
}

var GardenerRequestUpdate = Schema{
	{Name: "title", Rule: String(1, 200)},
	{Name: "description", Rule: String(1, 2000)},
	{Name: "requestType", Rule: Enum("supplies", "seedlings", "food-utility", "volunteer-help")},
	{Name: "status", Rule: Enum("pending", "approved", "rejected", "completed")},
	{Name: "notes", Rule: String(0, 2000)},
}

var VolunteerRequestCreate = Schema{
	{Name: "gardenId", Rule: ID()},
	{Name: "title", Required: true, Rule: String(1, 200)},
	{Name: "description", Required: true, Rule: String(1, 2000)},
	{Name: "date", Required: true, Rule: DateTime()},
	{Name: "status", Rule: Enum("open", "filled", "cancelled")},
}

var VolunteerRequestUpdate = Schema{
	{Name: "title", Rule: String(1, 200)},
	{Name: "description", Rule: String(1, 2000)},
	{Name: "date", Rule: DateTime()},
	{Name: "status", Rule: Enum("open", "filled", "cancelled")},
}

var Signup = Schema{
	{Name: "email", Required: true, Rule: String(3, 320)},
	{Name: "password", Required: true, Rule: String(8, 200)},
	{Name: "name", Required: true, Rule: String(1, 200)},
	{Name: "role", Required: true, Rule: Enum("Admin", "Gardener", "Volunteer")},
	{Name: "address", Rule: String(0, 500)},
	{Name: "zipcode", Rule: String(0, 20)},
	{Name: "phone", Rule: String(0, 30)},
}

var ProfileUpdate = Schema{
	{Name: "name", Rule: String(1, 200)},
	{Name: "phone", Rule: String(0, 30)},
	{Name: "zipcode", Rule: String(0, 20)},
	{Name: "address", Rule: String(0, 500)},
}

var Login = Schema{
	{Name: "email", Required: true, Rule: String(1, 320)},
	{Name: "password", Required: true, Rule: String(1, 200)},
}

var Refresh = Schema{
	{Name: "refreshToken", Required: true, Rule: String(1, 4096)},
}

var ReportCreate = Schema{
	{Name: "gardenId", Rule: ID()},
	{Name: "title", Required: true, Rule: String(1, 200)},
	{Name: "content", Required: true, Rule: String(1, 5000)},
	{Name: "type", Required: true, Rule: String(1, 100)},
	{Name: "activityType", Required: true, Rule: String(1, 100)},
	{Name: "description", Required: true, Rule: String(1, 2000)},
	{Name: "hoursWorked", Rule: PositiveNumber()},
	{Name: "rating", Rule: Int(1, 5)},
	{Name: "visitDate", Rule: DateTime()},
	{Name: "notes", Rule: String(0, 2000)},
}
