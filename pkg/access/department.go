package access

// Departments and their sub-teams. A User belongs to exactly one sub-team;
// a TeamLeader leads one department.
const (
	DepartmentSearch      = "Search"
	DepartmentCreative    = "Creative"
	DepartmentDevelopment = "Development"
)

var subteams = map[string][]string{
	DepartmentSearch:      {"SEO", "SEM", "SMO"},
	DepartmentCreative:    {"Design", "Content Writing"},
	DepartmentDevelopment: {"Python Development", "Web Development"},
}

func IsDepartment(name string) bool {
	_, ok := subteams[name]
	return ok
}

func Subteams(department string) []string {
	return subteams[department]
}

// DepartmentOf returns the department a sub-team belongs to.
func DepartmentOf(subteam string) (string, bool) {
	for dept, names := range subteams {
		for _, n := range names {
			if n == subteam {
				return dept, true
			}
		}
	}
	return "", false
}
