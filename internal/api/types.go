package api

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type ArrayStatus struct {
	Fresh        bool `json:"fresh"`
	Computations int  `json:"computations"`
}

type ContextStatus struct {
	ID        string                 `json:"id"`
	Object    string                 `json:"object"`
	Name      string                 `json:"name,omitempty"`
	Device    string                 `json:"device"`
	CreatedAt int64                  `json:"created_at"`
	Date      uint64                 `json:"date"`
	Groups    map[string]bool        `json:"groups"`
	Arrays    map[string]ArrayStatus `json:"arrays"`
	AONum     int64                  `json:"ao_num,omitempty"`
	MONum     int64                  `json:"mo_num,omitempty"`
	PointNum  int64                  `json:"point_num,omitempty"`
}

type ArrayResponse struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Shape  []int     `json:"shape"`
	Data   []float64 `json:"data"`
	Object string    `json:"object"`
}

type PointsRequest struct {
	Points [][]float64 `json:"points"`
}

type RescaleRequest struct {
	Factor *float64 `json:"factor"`
}

type SelectRequest struct {
	Keep []bool `json:"keep"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}
