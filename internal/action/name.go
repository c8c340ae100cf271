// ABOUTME: Closed enumeration of server actions accepted by the multiplexing endpoint
// ABOUTME: Adding an action means adding a constant here and to the known set

package action

import "slices"

// Name identifies one server-side operation behind the multiplexing endpoint.
type Name string

// Actions understood by the dialectic service.
const (
	ListAvailableDomainTags          Name = "listAvailableDomainTags"
	ListAvailableDomains             Name = "listAvailableDomains"
	ListAvailableDomainOverlays      Name = "listAvailableDomainOverlays"
	ListDomains                      Name = "listDomains"
	FetchProcessTemplate             Name = "fetchProcessTemplate"
	CreateProject                    Name = "createProject"
	CloneProject                     Name = "cloneProject"
	DeleteProject                    Name = "deleteProject"
	ExportProject                    Name = "exportProject"
	GetProjectDetails                Name = "getProjectDetails"
	GetProjectResourceContent        Name = "getProjectResourceContent"
	ListProjects                     Name = "listProjects"
	UpdateProjectInitialPrompt       Name = "updateProjectInitialPrompt"
	UpdateProjectDomain              Name = "updateProjectDomain"
	GetStageRecipe                   Name = "getStageRecipe"
	StartSession                     Name = "startSession"
	UpdateSessionModels              Name = "updateSessionModels"
	GenerateContributions            Name = "generateContributions"
	GetContributionContentSignedURL  Name = "getContributionContentSignedUrl"
	GetContributionContentData       Name = "getContributionContentData"
	GetIterationInitialPromptContent Name = "getIterationInitialPromptContent"
	ListModelCatalog                 Name = "listModelCatalog"
	SaveContributionEdit             Name = "saveContributionEdit"
	SubmitStageResponses             Name = "submitStageResponses"
)

var known = map[Name]struct{}{
	ListAvailableDomainTags:          {},
	ListAvailableDomains:             {},
	ListAvailableDomainOverlays:      {},
	ListDomains:                      {},
	FetchProcessTemplate:             {},
	CreateProject:                    {},
	CloneProject:                     {},
	DeleteProject:                    {},
	ExportProject:                    {},
	GetProjectDetails:                {},
	GetProjectResourceContent:        {},
	ListProjects:                     {},
	UpdateProjectInitialPrompt:       {},
	UpdateProjectDomain:              {},
	GetStageRecipe:                   {},
	StartSession:                     {},
	UpdateSessionModels:              {},
	GenerateContributions:            {},
	GetContributionContentSignedURL:  {},
	GetContributionContentData:       {},
	GetIterationInitialPromptContent: {},
	ListModelCatalog:                 {},
	SaveContributionEdit:             {},
	SubmitStageResponses:             {},
}

// Valid reports whether n is a known action.
func (n Name) Valid() bool {
	_, ok := known[n]
	return ok
}

func (n Name) String() string {
	return string(n)
}

// Names returns every known action, sorted.
func Names() []Name {
	out := make([]Name, 0, len(known))
	for n := range known {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
