package model

// AssessmentList is the caller's ordered view of assessments. Every method
// returns a new slice and leaves the receiver untouched.
type AssessmentList []Assessment

func (l AssessmentList) Prepend(items ...Assessment) AssessmentList {
	out := make(AssessmentList, 0, len(items)+len(l))
	out = append(out, items...)
	return append(out, l...)
}

func (l AssessmentList) ReplaceByID(a Assessment) AssessmentList {
	out := make(AssessmentList, len(l))
	for i, item := range l {
		if item.ID == a.ID {
			out[i] = a
			continue
		}
		out[i] = item
	}
	return out
}

func (l AssessmentList) RemoveByID(id uint) AssessmentList {
	out := make(AssessmentList, 0, len(l))
	for _, item := range l {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

func (l AssessmentList) Find(id uint) (*Assessment, bool) {
	for i := range l {
		if l[i].ID == id {
			return &l[i], true
		}
	}
	return nil, false
}
