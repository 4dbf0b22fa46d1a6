package alloy

// AutoPopulation describes how the runtime fills a field without user input.
type AutoPopulation struct {
	Source     AutoPopulationSource
	ContextKey string
}

// DefaultAutoPopulation is keyed by node path relative to the XDM root.
// Paths not listed are not auto-populated.
var DefaultAutoPopulation = map[string]AutoPopulation{
	"_id":                                          {Source: AutoPopulationAlways},
	"timestamp":                                    {Source: AutoPopulationAlways},
	"implementationDetails":                        {Source: AutoPopulationAlways},
	"implementationDetails.name":                   {Source: AutoPopulationAlways},
	"implementationDetails.version":                {Source: AutoPopulationAlways},
	"implementationDetails.environment":            {Source: AutoPopulationAlways},
	"eventType":                                    {Source: AutoPopulationCommand},
	"eventMergeId":                                 {Source: AutoPopulationCommand},
	"identityMap":                                  {Source: AutoPopulationCommand},
	"web.webPageDetails.URL":                       {Source: AutoPopulationContext, ContextKey: "web"},
	"web.webReferrer.URL":                          {Source: AutoPopulationContext, ContextKey: "web"},
	"device.screenHeight":                          {Source: AutoPopulationContext, ContextKey: "device"},
	"device.screenWidth":                           {Source: AutoPopulationContext, ContextKey: "device"},
	"device.screenOrientation":                     {Source: AutoPopulationContext, ContextKey: "device"},
	"environment.type":                             {Source: AutoPopulationContext, ContextKey: "environment"},
	"environment.browserDetails.viewportWidth":     {Source: AutoPopulationContext, ContextKey: "environment"},
	"environment.browserDetails.viewportHeight":    {Source: AutoPopulationContext, ContextKey: "environment"},
	"environment.browserDetails.userAgent":         {Source: AutoPopulationContext, ContextKey: "highEntropyUserAgentHints"},
	"placeContext.localTime":                       {Source: AutoPopulationContext, ContextKey: "placeContext"},
	"placeContext.localTimezoneOffset":             {Source: AutoPopulationContext, ContextKey: "placeContext"},
	"placeContext.geo.countryCode":                 {Source: AutoPopulationContext, ContextKey: "placeContext"},
	"environment.browserDetails.javaScriptEnabled": {Source: AutoPopulationContext, ContextKey: "environment"},
}
