package datagrid

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// DemoUsersCode is the grid code of the bundled demo grid.
const DemoUsersCode = "demo.users"

var (
	demoDepartments = []string{"Engineering", "Marketing", "Sales", "HR", "Finance", "Operations"}
	demoStatuses    = []string{"Active", "Inactive", "Pending", "Suspended"}
	demoRoles       = []string{"Admin", "Manager", "Developer", "Designer", "Analyst", "Support"}
	demoLocations   = []string{"New York", "San Francisco", "London", "Tokyo", "Berlin"}
)

func optionsOf(values []string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}

// DemoUsersDefinition describes the demo user directory grid.
func DemoUsersDefinition() GridDefinition {
	return GridDefinition{
		Code:        DemoUsersCode,
		Name:        "Users",
		Description: "Sample user directory",
		PageSize:    DefaultPageSize,
		Columns: []Column{
			{Key: IDField, Label: "ID", Hidden: true},
			{Key: "name", Label: "Name", Sortable: true, Editable: true, Required: true},
			{Key: "email", Label: "Email", Sortable: true, Editable: true, Required: true},
			{Key: "phone", Label: "Phone", Sortable: true, Editable: true},
			{Key: "department", Label: "Department", Sortable: true, Filterable: true, Editable: true, Default: "Engineering", Options: optionsOf(demoDepartments)},
			{Key: "role", Label: "Role", Sortable: true, Filterable: true, Editable: true, Default: "Developer", Options: optionsOf(demoRoles)},
			{Key: "status", Label: "Status", Sortable: true, Filterable: true, Editable: true, Default: "Active", Options: optionsOf(demoStatuses)},
			{Key: "salary", Label: "Salary", Sortable: true, ValueType: ValueNumber, Editable: true, Default: 50000},
			{Key: "joinDate", Label: "Join Date", Sortable: true, ValueType: ValueDate, Editable: true},
			{Key: "location", Label: "Location", Sortable: true, Filterable: true, Editable: true, Default: "New York", Options: optionsOf(demoLocations)},
			{Key: "rating", Label: "Rating", Sortable: true, ValueType: ValueNumber, Editable: true, Default: 1},
			{Key: "isActive", Label: "Active", Sortable: true, ValueType: ValueBoolean, Editable: true},
		},
	}
}

// DemoUsers generates n demo users. The same seed always yields the same rows.
func DemoUsers(n int, seed uint64) []Row {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pick := func(list []string) string { return list[rng.IntN(len(list))] }
	rows := make([]Row, n)
	for i := range n {
		idx := i + 1
		joined := time.Date(2020+rng.IntN(4), time.Month(rng.IntN(12)+1), rng.IntN(28)+1, 0, 0, 0, 0, time.UTC)
		rows[i] = Row{
			IDField:      fmt.Sprintf("user-%d", idx),
			"name":       fmt.Sprintf("User %d", idx),
			"email":      fmt.Sprintf("user%d@company.com", idx),
			"phone":      fmt.Sprintf("+1 (555) %03d-%04d", rng.IntN(900)+100, rng.IntN(9000)+1000),
			"department": pick(demoDepartments),
			"role":       pick(demoRoles),
			"status":     pick(demoStatuses),
			"salary":     float64(rng.IntN(100000) + 50000),
			"joinDate":   joined.Format(time.RFC3339),
			"location":   pick(demoLocations),
			"rating":     float64(rng.IntN(5) + 1),
			"isActive":   rng.Float64() > 0.3,
		}
	}
	return rows
}
